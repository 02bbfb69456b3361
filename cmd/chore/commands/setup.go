package commands

import (
	"github.com/spf13/cobra"
	"github.com/vestige-research/eeg-alpha/internal/app"
)

func (c *CLI) newSetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the virtual environment and install dependencies, tools and hooks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")
			return c.app.Setup(cmd.Context(), app.SetupOptions{Force: force})
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Reinstall even when the environment is up to date")
	return cmd
}
