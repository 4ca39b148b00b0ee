package recommendations

import (
	"fmt"

	"github.com/spf13/cobra"

	"tripmate/internal/cli/shared"
)

func newLikeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like <recommendation-id>",
		Short: "Toggle your like on a recommendation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := shared.ParseID("recommendation", args[0])
			if err != nil {
				return err
			}

			env, err := shared.Setup()
			if err != nil {
				return err
			}
			ctx, cancel := env.Context(cmd.Context())
			defer cancel()

			echoed, err := env.Client.ToggleLike(ctx, id, env.Session.User.ID)
			if err != nil {
				return shared.Describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Like toggled on recommendation %s\n", echoed)
			return nil
		},
	}
}
