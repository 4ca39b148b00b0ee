// Package cli is the tripmate command line
package cli

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	configcmd "tripmate/internal/cli/config"
	"tripmate/internal/cli/recommendations"
	"tripmate/internal/cli/reviews"
	"tripmate/internal/cli/shared"
	"tripmate/internal/tui"
)

// ErrNoTerminal is returned when the interactive client is started without a terminal
var ErrNoTerminal = errors.New("the interactive client needs a terminal, use the subcommands instead")

// NewRootCmd builds the tripmate command tree. Flags and TRIPMATE_*
// environment variables override the config file.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tripmate",
		Short:         "TripMate travel recommendations client",
		Long:          "Browse travel recommendations, read and write reviews, and like places.\nRun without a subcommand to start the interactive client.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Config file (default: first of the searched locations)")
	flags.String("base-url", "", "REST API base URL")
	flags.Int64("user-id", 0, "Signed-in user id")
	flags.String("token", "", "Bearer token")

	viper.SetEnvPrefix("TRIPMATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlag(shared.KeyConfig, flags.Lookup("config"))
	_ = viper.BindPFlag(shared.KeyBaseURL, flags.Lookup("base-url"))
	_ = viper.BindPFlag(shared.KeyUserID, flags.Lookup("user-id"))
	_ = viper.BindPFlag(shared.KeyUserToken, flags.Lookup("token"))

	root.AddCommand(
		recommendations.NewCmd(),
		reviews.NewCmd(),
		configcmd.NewCmd(),
		&cobra.Command{
			Use:   "tui",
			Short: "Start the interactive client",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTUI()
			},
		},
	)
	return root
}

func runTUI() error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ErrNoTerminal
	}
	cfg, err := shared.Load()
	if err != nil {
		return err
	}
	return tui.Run(cfg)
}
