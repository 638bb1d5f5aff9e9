// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the task log to LLM agents via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tasklog/internal/duration"
	"tasklog/internal/models"
	"tasklog/internal/taskstore"
)

// Server wraps the MCP server with tasklog tools.
type Server struct {
	mcp   *server.MCPServer
	tasks *taskstore.Store
}

// New creates an MCP server with all tasklog tools registered.
func New(tasks *taskstore.Store) *Server {
	s := &Server{tasks: tasks}

	s.mcp = server.NewMCPServer(
		"tasklog",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("log_task",
		mcp.WithDescription("Append a task entry to the log, dated now."),
		mcp.WithString("description", mcp.Required(), mcp.Description("What was done")),
		mcp.WithString("tags", mcp.Description("Optional comma-separated tags")),
	), s.logTask)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List logged tasks, optionally limited to a recency window."),
		mcp.WithString("recency", mcp.Description("Optional window like \"1 day\" or \"2 week\"")),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List every tag used in the task log."),
	), s.listTags)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) logTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description, err := req.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var tags []string
	if raw, err := req.RequireString("tags"); err == nil && raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	task := models.NewTask(time.Now(), description, tags)
	if err := s.tasks.Append(task); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("logged: %s", task.Date)), nil
}

func (s *Server) listTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks, err := s.tasks.Load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if raw, reqErr := req.RequireString("recency"); reqErr == nil && raw != "" {
		d, err := duration.Parse(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		tasks = taskstore.Since(tasks, d, time.Now())
	}

	out, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks, err := s.tasks.Load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tags := taskstore.Tags(tasks)
	if len(tags) == 0 {
		return mcp.NewToolResultText("no tags"), nil
	}
	return mcp.NewToolResultText(strings.Join(tags, "\n")), nil
}
