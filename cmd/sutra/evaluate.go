package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sutra/internal/task"
)

const stdinSource = "-"

func newEvaluateCommand(cli *CLI) *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "evaluate [file|-]",
		Short: "Classify and run a task read from a JSON or YAML file",
		Long: `Reads a task from a file, or from stdin when the argument is "-" or omitted,
classifies its risk and runs every action. Files ending in .yaml or .yml are
parsed as YAML; everything else is JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := stdinSource
			if len(args) == 1 {
				source = args[0]
			}

			data, err := readInput(cmd.InOrStdin(), source)
			if err != nil {
				return err
			}
			t, err := decodeInput(source, data, repair)
			if err != nil {
				return err
			}

			return cli.withRuntime(cmd.ErrOrStderr(), func(rt *runtime) error {
				return runTask(cmd, rt, t)
			})
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "Repair malformed JSON (trailing commas, single quotes, truncation) before decoding")
	return cmd
}

func readInput(stdin io.Reader, source string) ([]byte, error) {
	if source == stdinSource {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}
	return data, nil
}

func decodeInput(source string, data []byte, repair bool) (task.Task, error) {
	if isYAML(source, data) {
		return task.DecodeYAML(data)
	}
	if repair {
		return task.DecodeLenient(data)
	}
	return task.Decode(data)
}

// isYAML picks YAML by file extension; stdin is YAML unless it opens like JSON.
func isYAML(source string, data []byte) bool {
	if source != stdinSource {
		ext := strings.ToLower(filepath.Ext(source))
		return ext == ".yaml" || ext == ".yml"
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return false
	}
	switch trimmed[0] {
	case '{', '[', '"':
		return false
	}
	return !bytes.Equal(trimmed, []byte("null"))
}

func runTask(cmd *cobra.Command, rt *runtime, t task.Task) error {
	report, err := rt.coordinator.Process(cmd.Context(), t)
	if err != nil {
		return err
	}
	return printReport(cmd.OutOrStdout(), report)
}
