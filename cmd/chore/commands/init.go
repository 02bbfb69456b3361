package commands

import "github.com/spf13/cobra"

func (c *CLI) newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in task table to chore.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("format")
			return c.app.Init(format)
		},
	}
	cmd.Flags().String("format", "yaml", "Config format: yaml or toml")
	return cmd
}
