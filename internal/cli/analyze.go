package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SimonStenelid/X-team/internal/content"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the weekly engagement analysis",
	Long:  "Computes per-type average likes and retweets over the last seven days of posts and stores the result in the orchestrator state.",
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	app, err := newApp(true)
	if err != nil {
		return err
	}
	defer app.Close()

	stats, err := app.orch.RunWeeklyAnalysis(cmd.Context())
	if err != nil {
		return err
	}

	printHeader("📈 Weekly Engagement")
	for _, t := range content.AllTypes() {
		s := stats[t]
		fmt.Printf("%-8s %3d posts  avg %.1f likes  %.1f retweets\n", t, s.Count, s.AvgLikes, s.AvgRetweets)
	}
	return nil
}
