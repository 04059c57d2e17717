package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dopamind/dopamind/internal/daemon"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveJournal, "journal", false, "Enable the SQLite journal (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost    string
	servePort    int
	serveJournal bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dopamind API server",
	Long:  `Start the reward scoring API server at localhost:5000.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}

	// Override config from flags
	if serveHost != "" {
		cfg.API.Host = serveHost
	}
	if servePort > 0 {
		cfg.API.Port = servePort
	}
	if serveJournal {
		cfg.Storage.Journal = true
	}

	d, err := daemon.NewWithConfig(cfg, rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Serve(context.Background())
}
