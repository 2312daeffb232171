package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"sutra/internal/config"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "0.1.0"

const shutdownTimeout = 10 * time.Second

// CLI holds state shared across subcommands.
type CLI struct {
	configPath string
	config     config.Config
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	cli := &CLI{}

	rootCmd := &cobra.Command{
		Use:   "sutra",
		Short: "Risk-tiered task runner",
		Long: fmt.Sprintf(`%s

Classifies a task's actions into green, yellow or red risk tiers and runs
them concurrently, reporting one result per action.

%s
  sutra serve                      # HTTP API on :5000
  sutra evaluate task.json         # run a task file
  cat task.yaml | sutra evaluate - # run a task from stdin
  sutra sample red                 # run a built-in sample task`,
			bold("sutra "+Version),
			bold("EXAMPLES:")),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cli.configPath)
			if err != nil {
				return err
			}
			cli.config = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cli.configPath, "config", "c", "", "Config file (default: ./sutra.yaml or $HOME/.sutra/sutra.yaml)")

	rootCmd.AddCommand(
		newServeCommand(cli),
		newEvaluateCommand(cli),
		newSampleCommand(cli),
		newVersionCommand(),
	)
	return rootCmd
}

// withRuntime builds the object graph, runs fn and shuts observability down.
// Logs go to logOut so stdout stays reserved for reports.
func (c *CLI) withRuntime(logOut io.Writer, fn func(*runtime) error) error {
	rt, err := buildRuntime(c.config, logOut)
	if err != nil {
		return err
	}
	runErr := fn(rt)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := rt.close(ctx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
