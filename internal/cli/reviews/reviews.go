package reviews

import "github.com/spf13/cobra"

// NewCmd builds the reviews command group
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Read and write reviews",
		Long:  "List, post, edit, delete and report reviews and replies",
	}
	cmd.AddCommand(newListCmd(), newAddCmd(), newEditCmd(), newDeleteCmd(), newReportCmd())
	return cmd
}
