package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tripmate/internal/cli/shared"
	tuiconfig "tripmate/internal/tui/config"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the merged configuration: file, TRIPMATE_* environment and flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := shared.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "TripMate Configuration:")
			fmt.Fprintln(out, "")
			fmt.Fprintf(out, "Server:\n")
			fmt.Fprintf(out, "  Base URL: %s\n", cfg.GetHTTPBaseURL())
			fmt.Fprintf(out, "  Timeout: %s\n", cfg.API.Timeout)
			fmt.Fprintf(out, "  Rate: %.1f/s (burst %d)\n", cfg.API.RatePerSecond, cfg.API.Burst)
			fmt.Fprintf(out, "  Cache pages: %t\n", cfg.API.CachePages)
			fmt.Fprintln(out, "")
			fmt.Fprintf(out, "UI:\n")
			fmt.Fprintf(out, "  Theme: %s\n", cfg.UI.Theme)
			fmt.Fprintf(out, "  Page size: %d\n", cfg.UI.PageSize)
			fmt.Fprintln(out, "")

			fmt.Fprintf(out, "User:\n")
			if cfg.User.ID != 0 {
				fmt.Fprintf(out, "  ID: %d\n", cfg.User.ID)
			}
			if cfg.User.Name != "" {
				fmt.Fprintf(out, "  Name: %s\n", cfg.User.Name)
			}
			token := cfg.User.Token
			switch {
			case token == "":
				fmt.Fprintf(out, "  Token: not set\n")
			case len(token) > 20:
				fmt.Fprintf(out, "  Token: %s...\n", token[:20])
			default:
				fmt.Fprintf(out, "  Token: %s\n", token)
			}
			if cfg.User.ID == 0 && token == "" {
				fmt.Fprintf(out, "  Set user.id or user.token to post reviews\n")
			}

			fmt.Fprintln(out, "")
			fmt.Fprintln(out, "Searched files:")
			for _, loc := range tuiconfig.Locations() {
				mark := " "
				if _, err := os.Stat(loc); err == nil {
					mark = "✓"
				}
				fmt.Fprintf(out, "  %s %s\n", mark, loc)
			}
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <path>",
		Short: "Write a default configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err == nil {
				return fmt.Errorf("%s already exists", args[0])
			}
			if err := tuiconfig.Default().Save(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", args[0])
			return nil
		},
	}
}
