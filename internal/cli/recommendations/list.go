package recommendations

import (
	"fmt"

	"github.com/spf13/cobra"

	"tripmate/internal/cli/shared"
	"tripmate/pkg/utils"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recommendations",
		Long:  "List recommendations, newest first, optionally filtered by title or place",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, _ := cmd.Flags().GetString("filter")
			page, _ := cmd.Flags().GetInt("page")
			if page < 1 {
				return fmt.Errorf("--page must be at least 1")
			}

			env, err := shared.Setup()
			if err != nil {
				return err
			}
			ctx, cancel := env.Context(cmd.Context())
			defer cancel()

			p, err := env.Client.FetchRecommendations(ctx, filter, page-1, env.Config.UI.PageSize)
			if err != nil {
				return shared.Describe(err)
			}

			out := cmd.OutOrStdout()
			if len(p.Items) == 0 {
				fmt.Fprintln(out, "No recommendations found.")
				return nil
			}

			fmt.Fprintf(out, "\nRecommendations (page %d):\n\n", page)
			for _, r := range p.Items {
				fmt.Fprintf(out, "[%s] %s\n", r.ID, r.Title)
				fmt.Fprintf(out, "   %s • by %s • %s\n", r.Location, r.AuthorName, utils.TimeAgo(r.CreatedAt))
				fmt.Fprintf(out, "   ♥ %d  💬 %d  👁 %d\n\n",
					r.Aggregate.LikesCount, r.Aggregate.ReviewsCount, r.Aggregate.ViewsCount)
			}
			if !p.IsLast {
				fmt.Fprintf(out, "More on page %d.\n", page+1)
			}
			return nil
		},
	}
	cmd.Flags().StringP("filter", "f", "", "Filter by title or place")
	cmd.Flags().IntP("page", "p", 1, "Page number, starting at 1")
	return cmd
}
