package recommendations

import "github.com/spf13/cobra"

// NewCmd builds the recommendations command group
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recommendations",
		Aliases: []string{"recs"},
		Short:   "Browse travel recommendations",
		Long:    "List recommendations and like the ones you enjoyed",
	}
	cmd.AddCommand(newListCmd(), newLikeCmd())
	return cmd
}
