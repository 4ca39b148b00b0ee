package config

import "github.com/spf13/cobra"

// NewCmd builds the config command group
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
		Long:  "View and manage TripMate client configuration",
	}
	cmd.AddCommand(newShowCmd(), newInitCmd())
	return cmd
}
