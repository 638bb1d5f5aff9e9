// Package summary sends task text to an OpenAI-compatible chat-completion
// endpoint and relays the textual reply.
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tasklog/internal/apperr"
)

const (
	// System prompt for summarizing a transcript of many task entries.
	transcriptPrompt = "You are a work-log summarizer. You receive a transcript of task " +
		"entries, one per line, in chronological order. Produce a complete and " +
		"neutral summary of the work described. Cover every entry, group related " +
		"work, and do not editorialize or omit items."

	// System prompt for condensing a single task description.
	condensePrompt = "You receive the description of a single task. Reply with exactly " +
		"one sentence that condenses it. No preamble, no quotes."
)

// Client talks to a chat-completion endpoint. Failures are surfaced, never
// retried.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient creates a client for the given endpoint and model.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{},
	}
}

// Summarize sends a newline-joined transcript of task descriptions and
// returns the model's summary.
func (c *Client) Summarize(ctx context.Context, transcript string) (string, error) {
	return c.complete(ctx, transcriptPrompt, transcript)
}

// ShortDescription condenses a single task description to one sentence.
func (c *Client) ShortDescription(ctx context.Context, description string) (string, error) {
	return c.complete(ctx, condensePrompt, description)
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.KindExternal, err, "chat completion request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Wrap(apperr.KindExternal, err, "read chat completion response")
	}

	if resp.StatusCode != http.StatusOK {
		var parsed chatResponse
		if json.Unmarshal(respBody, &parsed) == nil && parsed.Error != nil && parsed.Error.Message != "" {
			return "", apperr.Externalf("chat completion failed (%d): %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", apperr.Externalf("chat completion failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", apperr.Wrap(apperr.KindExternal, err, "decode chat completion response")
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == nil {
		return "", apperr.Externalf("chat completion returned no content")
	}
	return *parsed.Choices[0].Message.Content, nil
}
