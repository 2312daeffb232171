package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sutra/internal/task"
)

func newSampleCommand(cli *CLI) *cobra.Command {
	kinds := task.SampleKinds()

	return &cobra.Command{
		Use:       "sample <kind>",
		Short:     "Run a built-in sample task (" + strings.Join(kinds, ", ") + ")",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, ok := task.Sample(args[0])
			if !ok {
				return fmt.Errorf("unknown risk type: %s (want one of %s)", args[0], strings.Join(kinds, ", "))
			}
			return cli.withRuntime(cmd.ErrOrStderr(), func(rt *runtime) error {
				return runTask(cmd, rt, t)
			})
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// no config needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sutra %s\n", Version)
		},
	}
}
