package reviews

import (
	"fmt"

	"github.com/spf13/cobra"

	"tripmate/internal/cli/shared"
	"tripmate/internal/engagement"
	"tripmate/pkg/utils"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <recommendation-id>",
		Short: "List reviews of a recommendation",
		Long:  "List the reviews of a recommendation, or the replies to one review with --parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entityID, err := shared.ParseID("recommendation", args[0])
			if err != nil {
				return err
			}
			parent, _ := cmd.Flags().GetInt64("parent")
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

			size := env.Config.UI.PageSize
			var p engagement.Page[engagement.Comment]
			if parent > 0 {
				p, err = env.Client.FetchReplies(ctx, engagement.ServerID(parent), page-1, size)
			} else {
				p, err = env.Client.FetchRootReviews(ctx, entityID, page-1, size)
			}
			if err != nil {
				return shared.Describe(err)
			}

			out := cmd.OutOrStdout()
			if len(p.Items) == 0 {
				fmt.Fprintln(out, "No reviews yet.")
				return nil
			}
			for _, c := range p.Items {
				fmt.Fprintf(out, "[%s] %s • %s\n", c.ID, c.AuthorName, utils.TimeAgo(c.CreatedAt))
				switch c.Status {
				case engagement.StatusDeleted:
					fmt.Fprintln(out, "   (deleted)")
				case engagement.StatusBlocked:
					fmt.Fprintln(out, "   (hidden by moderators)")
				default:
					fmt.Fprintf(out, "   %s\n", c.Content)
				}
				if c.ReplyCount > 0 {
					fmt.Fprintf(out, "   %d replies\n", c.ReplyCount)
				}
			}
			if !p.IsLast {
				fmt.Fprintf(out, "More on page %d.\n", page+1)
			}
			return nil
		},
	}
	cmd.Flags().Int64("parent", 0, "List replies to this review instead")
	cmd.Flags().IntP("page", "p", 1, "Page number, starting at 1")
	return cmd
}
