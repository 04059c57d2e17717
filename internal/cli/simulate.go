package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/dopamind/dopamind/internal/app/pipeline"
	"github.com/dopamind/dopamind/internal/daemon"
	"github.com/dopamind/dopamind/internal/domain"
)

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simUser, "user", "cli-user", "User ID to simulate")
	f.StringVarP(&simReward, "reward", "r", "like", "Reward type")
	f.Float64Var(&simFatigue, "fatigue", 0, "Fatigue level (0-1)")
	f.Float64Var(&simStress, "stress", 0, "Stress level (0-1)")
	f.StringVar(&simMood, "mood", domain.MoodNeutral, "Mood (positive, neutral, ...)")
	f.Uint64Var(&simSeed, "seed", 0, "Random seed (0 = config value)")
	f.IntVarP(&simCount, "count", "n", 1, "Number of rewards to process in a row")
	f.BoolVar(&simJSON, "json", false, "Print results as JSON")
	rootCmd.AddCommand(simulateCmd)
}

var (
	simUser    string
	simReward  string
	simFatigue float64
	simStress  float64
	simMood    string
	simSeed    uint64
	simCount   int
	simJSON    bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run rewards through a fresh in-memory engine",
	Long: `Process one or more rewards for a single user without starting the
server. The first reward uses the default generators; later ones are
predicted from the user's accumulated history.`,
	RunE: runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simCount < 1 {
		return fmt.Errorf("--count must be at least 1")
	}

	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	if simSeed != 0 {
		cfg.Personalization.Seed = simSeed
	}
	engine := daemon.NewEngine(cfg)

	req := pipeline.RewardRequest{
		UserID:     simUser,
		RewardType: simReward,
		Context: domain.Context{
			domain.ContextFatigue: simFatigue,
			domain.ContextStress:  simStress,
			domain.ContextMood:    simMood,
		},
	}

	results := make([]pipeline.RewardResult, 0, simCount)
	for i := 0; i < simCount; i++ {
		res, err := engine.ProcessReward(context.Background(), req)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	out := cmd.OutOrStdout()
	if simJSON {
		b, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(b))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPATH\tEMOTION\tINTENSITY\tCONFIDENCE\tPEAK\tDURATION")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.3f\t%.3f\t%.3f\t%.1fs\n",
			i+1,
			r.Path,
			r.Emotion.Emotion,
			r.Emotion.Intensity,
			r.Emotion.Confidence,
			r.Dopamine.Peak,
			r.Dopamine.Duration,
		)
	}
	return w.Flush()
}
