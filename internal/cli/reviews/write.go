package reviews

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tripmate/internal/cli/shared"
	"tripmate/internal/engagement"
	"tripmate/pkg/utils"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <recommendation-id> <text>...",
		Short: "Post a review, or a reply with --parent",
		Long: `Post a review, or a reply with --parent.

Threads are three levels deep: reviews, replies and nested replies. The
parent is looked up in the recommendation's thread first and replying to a
nested reply is refused before anything is sent.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entityID, err := shared.ParseID("recommendation", args[0])
			if err != nil {
				return err
			}
			content, err := utils.ValidateContent(strings.Join(args[1:], " "))
			if err != nil {
				return fmt.Errorf("review text: %w", err)
			}
			parent, _ := cmd.Flags().GetInt64("parent")

			env, err := shared.Setup()
			if err != nil {
				return err
			}
			ctx, cancel := env.Context(cmd.Context())
			defer cancel()

			req := engagement.CreateRequest{EntityID: entityID, Content: content}
			if parent > 0 {
				req.ParentID = engagement.ServerID(parent)
				depth, err := parentDepth(ctx, env.Client, entityID, req.ParentID)
				if err != nil {
					return shared.Describe(err)
				}
				if !depth.CanReply() {
					return fmt.Errorf("review %d is a %s comment: %w", parent, depth, engagement.ErrDepthExceeded)
				}
			}
			created, err := env.Client.CreateComment(ctx, req)
			if err != nil {
				return shared.Describe(err)
			}

			kind := "Review"
			if parent > 0 {
				kind = "Reply"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s posted with id %s\n", kind, created.ID)
			return nil
		},
	}
	cmd.Flags().Int64("parent", 0, "Reply to this review")
	return cmd
}

const scanPageSize = 50

// parentDepth finds the level of parent within the thread of entity
func parentDepth(ctx context.Context, gw engagement.Gateway, entity, parent engagement.ID) (engagement.Depth, error) {
	level, err := fetchAll(func(page int) (engagement.Page[engagement.Comment], error) {
		return gw.FetchRootReviews(ctx, entity, page, scanPageSize)
	})
	for depth := engagement.DepthRoot; err == nil; depth++ {
		for _, c := range level {
			if c.ID == parent {
				return depth, nil
			}
		}
		if _, ok := depth.Child(); !ok || len(level) == 0 {
			break
		}
		level, err = childrenOf(ctx, gw, level, depth)
	}
	if err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("review %s: %w", parent, engagement.ErrNotFound)
}

func childrenOf(ctx context.Context, gw engagement.Gateway, parents []engagement.Comment, depth engagement.Depth) ([]engagement.Comment, error) {
	var out []engagement.Comment
	for _, p := range parents {
		if p.ReplyCount == 0 {
			continue
		}
		kids, err := fetchAll(func(page int) (engagement.Page[engagement.Comment], error) {
			if depth == engagement.DepthRoot {
				return gw.FetchReplies(ctx, p.ID, page, scanPageSize)
			}
			return gw.FetchNestedReplies(ctx, p.ID, page, scanPageSize)
		})
		if err != nil {
			return nil, err
		}
		out = append(out, kids...)
	}
	return out, nil
}

func fetchAll(fetch func(page int) (engagement.Page[engagement.Comment], error)) ([]engagement.Comment, error) {
	var all []engagement.Comment
	for page := 0; ; page++ {
		res, err := fetch(page)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Items...)
		if res.IsLast || len(res.Items) == 0 {
			return all, nil
		}
	}
}

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <review-id> <text>...",
		Short: "Replace the text of your review",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := shared.ParseID("review", args[0])
			if err != nil {
				return err
			}
			content, err := utils.ValidateContent(strings.Join(args[1:], " "))
			if err != nil {
				return fmt.Errorf("review text: %w", err)
			}

			env, err := shared.Setup()
			if err != nil {
				return err
			}
			ctx, cancel := env.Context(cmd.Context())
			defer cancel()

			if err := env.Client.EditComment(ctx, id, content); err != nil {
				return shared.Describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Review %s updated\n", id)
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <review-id>...",
		Short: "Delete one or more of your reviews",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]engagement.ID, 0, len(args))
			for _, arg := range args {
				id, err := shared.ParseID("review", arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			env, err := shared.Setup()
			if err != nil {
				return err
			}
			ctx, cancel := env.Context(cmd.Context())
			defer cancel()

			var errs []error
			for _, id := range ids {
				if err := env.Client.DeleteComment(ctx, id); err != nil {
					errs = append(errs, fmt.Errorf("review %s: %w", id, shared.Describe(err)))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Review %s deleted\n", id)
			}
			return utils.CombineErrors(errs...)
		},
	}
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <review-id>",
		Short: "Flag a review for moderation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := shared.ParseID("review", args[0])
			if err != nil {
				return err
			}
			reason, _ := cmd.Flags().GetString("reason")
			detail, _ := cmd.Flags().GetString("detail")
			if err := utils.ValidateReportReason(reason); err != nil {
				return fmt.Errorf("--reason is required")
			}

			env, err := shared.Setup()
			if err != nil {
				return err
			}
			ctx, cancel := env.Context(cmd.Context())
			defer cancel()

			if err := env.Client.ReportComment(ctx, id, reason, utils.SanitizeContent(detail)); err != nil {
				return shared.Describe(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Report sent, thank you")
			return nil
		},
	}
	cmd.Flags().String("reason", "", "Why the review should be looked at")
	cmd.Flags().String("detail", "", "Optional details")
	return cmd
}
