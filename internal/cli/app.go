// Package cli implements the tasklog command surface. Each command is a
// single linear transaction: validate inputs, read the stores, compute,
// write if mutating, print.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"tasklog/internal/apperr"
	"tasklog/internal/config"
	"tasklog/internal/storage"
	"tasklog/internal/taskstore"
)

type app struct {
	out    io.Writer
	errOut io.Writer
}

// New builds the root command. Handled application errors are printed to
// errOut and the process exits zero; anything else propagates to main.
func New(out, errOut io.Writer) *cli.Command {
	a := &app{out: out, errOut: errOut}

	return &cli.Command{
		Name:  "tasklog",
		Usage: "Append-only personal task log with tag filtering and LLM summaries",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Usage:   "Base directory holding config.json and tasks.json",
				Value:   defaultDir(),
				Sources: cli.EnvVars("TASKLOG_DIR"),
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Inline JSON config override, e.g. '{\"model\":\"gpt-4o-mini\"}'",
			},
		},
		Commands: []*cli.Command{
			a.initCommand(),
			a.configResetCommand(),
			a.configSetCommand(),
			a.configShowCommand(),
			a.newCommand(),
			a.genShortDescriptionsCommand(),
			a.showCommand(),
			a.tagsShowCommand(),
			a.summarizeCommand(),
			a.serveCommand(),
			a.mcpCommand(),
		},
	}
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tasklog"
	}
	return filepath.Join(home, ".tasklog")
}

// action wraps a command action so that application errors are reported
// cleanly on stderr instead of crashing the process.
func (a *app) action(fn func(ctx context.Context, cmd *cli.Command) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := fn(ctx, cmd); err != nil {
			if ae, ok := apperr.FromError(err); ok {
				fmt.Fprintf(a.errOut, "error: %s\n", ae.Error())
				return nil
			}
			return err
		}
		return nil
	}
}

// open returns the provider for the base directory, which must exist.
func (a *app) open(cmd *cli.Command) (*storage.Dir, error) {
	path := cmd.String("dir")
	dir, err := storage.NewDir(path)
	if err != nil {
		return nil, apperr.NotFoundf("base directory %s not found; run init first", path)
	}
	return dir, nil
}

// resolveConfig merges defaults, the config file, and the --config
// override.
func (a *app) resolveConfig(cmd *cli.Command) (*config.Config, error) {
	dir, err := a.open(cmd)
	if err != nil {
		return nil, err
	}
	return config.NewStore(dir).Resolve(cmd.String("config"))
}

func (a *app) tasks(cmd *cli.Command) (*taskstore.Store, error) {
	dir, err := a.open(cmd)
	if err != nil {
		return nil, err
	}
	return taskstore.NewStore(dir), nil
}
