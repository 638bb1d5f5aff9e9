package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"tasklog/internal/apperr"
	"tasklog/internal/config"
	"tasklog/internal/duration"
	"tasklog/internal/mcpserver"
	"tasklog/internal/models"
	"tasklog/internal/storage"
	"tasklog/internal/summary"
	"tasklog/internal/taskstore"
	"tasklog/internal/viewer"
)

func (a *app) initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create the base directory, default config, and empty task log",
		Action: a.action(func(_ context.Context, cmd *cli.Command) error {
			dir, err := storage.Create(cmd.String("dir"))
			if err != nil {
				return err
			}

			cfgStore := config.NewStore(dir)
			if ok, err := dir.Exists(config.FileName); err != nil {
				return err
			} else if !ok {
				if err := cfgStore.Reset(); err != nil {
					return err
				}
			}

			taskStore := taskstore.NewStore(dir)
			if ok, err := dir.Exists(taskstore.FileName); err != nil {
				return err
			} else if !ok {
				if err := taskStore.Save(nil); err != nil {
					return err
				}
			}

			fmt.Fprintf(a.out, "initialized %s\n", dir.Root())
			return nil
		}),
	}
}

func (a *app) configResetCommand() *cli.Command {
	return &cli.Command{
		Name:  "config-reset",
		Usage: "Overwrite the config file with built-in defaults",
		Action: a.action(func(_ context.Context, cmd *cli.Command) error {
			dir, err := a.open(cmd)
			if err != nil {
				return err
			}
			if err := config.NewStore(dir).Reset(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "config reset")
			return nil
		}),
	}
}

func (a *app) configSetCommand() *cli.Command {
	return &cli.Command{
		Name:      "config-set",
		Usage:     "Set a config field (baseURL, apiKey, model, recency)",
		ArgsUsage: "<key> <value>",
		Action: a.action(func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 2 {
				return apperr.Validationf("config-set takes exactly two arguments: <key> <value>")
			}
			dir, err := a.open(cmd)
			if err != nil {
				return err
			}
			return config.NewStore(dir).Set(cmd.Args().Get(0), cmd.Args().Get(1))
		}),
	}
}

func (a *app) configShowCommand() *cli.Command {
	return &cli.Command{
		Name:  "config-show",
		Usage: "Print the resolved configuration as JSON",
		Action: a.action(func(_ context.Context, cmd *cli.Command) error {
			cfg, err := a.resolveConfig(cmd)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, string(data))
			return nil
		}),
	}
}

func (a *app) newCommand() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Append a task entry dated now",
		ArgsUsage: "<description>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
		},
		Action: a.action(func(_ context.Context, cmd *cli.Command) error {
			description := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
			if description == "" {
				return apperr.Validationf("description is required")
			}
			store, err := a.tasks(cmd)
			if err != nil {
				return err
			}
			task := models.NewTask(time.Now(), description, splitTags(cmd.String("tags")))
			if err := store.Append(task); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "logged task at %s\n", task.Date)
			return nil
		}),
	}
}

func (a *app) genShortDescriptionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "gen-short-descriptions",
		Usage: "Fill missing short descriptions via the chat-completion endpoint",
		Action: a.action(func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := a.resolveConfig(cmd)
			if err != nil {
				return err
			}
			store, err := a.tasks(cmd)
			if err != nil {
				return err
			}
			client := summary.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Model)
			n, err := store.Backfill(ctx, client)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "generated %d short descriptions\n", n)
			return nil
		}),
	}
}

func (a *app) showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "List recent tasks",
		ArgsUsage: "[<duration>]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags to filter by"},
			&cli.BoolFlag{Name: "short", Usage: "Prefer short descriptions"},
			&cli.StringFlag{Name: "format", Usage: "Output format: markdown, json, or yaml", Value: "markdown"},
		},
		Action: a.action(func(_ context.Context, cmd *cli.Command) error {
			cfg, err := a.resolveConfig(cmd)
			if err != nil {
				return err
			}
			window := *cfg.Recency
			if arg := cmd.Args().First(); arg != "" {
				window, err = duration.Parse(arg)
				if err != nil {
					return err
				}
			}

			store, err := a.tasks(cmd)
			if err != nil {
				return err
			}
			all, err := store.Load()
			if err != nil {
				return err
			}

			selected := taskstore.Since(all, window, time.Now())
			selected = taskstore.FilterTags(selected, splitTags(cmd.String("tags")))

			out, err := renderTasks(selected, cmd.String("format"), cmd.Bool("short"))
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, out)
			return nil
		}),
	}
}

func (a *app) tagsShowCommand() *cli.Command {
	return &cli.Command{
		Name:  "tags-show",
		Usage: "List every tag used in the task log",
		Action: a.action(func(_ context.Context, cmd *cli.Command) error {
			store, err := a.tasks(cmd)
			if err != nil {
				return err
			}
			all, err := store.Load()
			if err != nil {
				return err
			}
			for _, tag := range taskstore.Tags(all) {
				fmt.Fprintln(a.out, tag)
			}
			return nil
		}),
	}
}

func (a *app) summarizeCommand() *cli.Command {
	return &cli.Command{
		Name:      "summarize",
		Usage:     "Summarize tasks from a recency window via the chat-completion endpoint",
		ArgsUsage: "<duration>",
		Action: a.action(func(ctx context.Context, cmd *cli.Command) error {
			arg := cmd.Args().First()
			if arg == "" {
				return apperr.Validationf("summarize takes a duration argument, e.g. \"1 day\"")
			}
			window, err := duration.Parse(arg)
			if err != nil {
				return err
			}

			cfg, err := a.resolveConfig(cmd)
			if err != nil {
				return err
			}
			store, err := a.tasks(cmd)
			if err != nil {
				return err
			}
			all, err := store.Load()
			if err != nil {
				return err
			}

			selected := taskstore.Since(all, window, time.Now())
			if len(selected) == 0 {
				fmt.Fprintf(a.out, "no tasks in the last %s\n", window)
				return nil
			}

			transcript := make([]string, len(selected))
			for i, t := range selected {
				transcript[i] = t.Description
			}

			client := summary.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Model)
			reply, err := client.Summarize(ctx, strings.Join(transcript, "\n"))
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, reply)
			return nil
		}),
	}
}

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the browser viewer for the task log",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address", Value: ":8080"},
		},
		Action: a.action(func(ctx context.Context, cmd *cli.Command) error {
			dir, err := a.open(cmd)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
			return viewer.Run(ctx, dir, cmd.String("addr"), logger)
		}),
	}
}

func (a *app) mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve task tools over MCP on stdin/stdout",
		Action: a.action(func(_ context.Context, cmd *cli.Command) error {
			dir, err := a.open(cmd)
			if err != nil {
				return err
			}
			return mcpserver.New(taskstore.NewStore(dir)).ServeStdio()
		}),
	}
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
