package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/vestige-research/eeg-alpha/internal/app"
	"github.com/vestige-research/eeg-alpha/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [tasks...] [NAME=value...]",
		Short: "Run tasks and their prerequisites",
		Example: `  chore run check
  chore run branch NAME=feat/alpha-band
  chore run test --watch`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, vars, err := splitArgs(args)
			if err != nil {
				return err
			}
			if len(targets) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}

			outputMode, _ := cmd.Flags().GetString("output")
			watch, _ := cmd.Flags().GetBool("watch")

			opts := app.RunOptions{
				OutputMode: outputMode,
				Watch:      watch,
			}
			if cmd.Flags().Changed("tty") {
				tty, _ := cmd.Flags().GetBool("tty")
				opts.TTY = &tty
			}

			return c.app.Run(cmd.Context(), targets, vars, opts)
		},
	}
	cmd.Flags().StringP("output", "o", "auto", "Output mode: auto, linear or quiet")
	cmd.Flags().BoolP("watch", "w", false, "Re-run the tasks whenever project files change")
	cmd.Flags().Bool("tty", false, "Run tools on a pseudo-terminal (default: only when stdout is a terminal)")
	return cmd
}

// splitArgs separates task names from NAME=value assignments.
func splitArgs(args []string) ([]string, map[string]string, error) {
	var targets []string
	vars := make(map[string]string)
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			targets = append(targets, arg)
			continue
		}
		if name == "" {
			return nil, nil, zerr.With(zerr.Wrap(domain.ErrInvalidVariable, arg), "arg", arg)
		}
		vars[name] = value
	}
	return targets, vars, nil
}
