package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dopamind/dopamind/internal/domain"
)

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"rewards"},
	Short:   "List reward types and their response constants",
	RunE:    runCategories,
}

func runCategories(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REWARD\tEMOTION\tMODIFIER\tPEAK BASE\tDURATION")
	for _, c := range domain.RewardCategories() {
		p := c.Profile()
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.1fs\n",
			c, p.Emotion, p.IntensityModifier, p.PeakBase, p.DurationSeconds)
	}
	return w.Flush()
}
