// Package cli implements the dopamind command-line interface using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dopamind",
	Short: "dopamind: emotion and dopamine reward scoring",
	Long: `dopamind turns interaction rewards (likes, shares, achievements...)
into simulated emotion and dopamine responses, learns per-user
averages over time, and reports global trends and insights.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
