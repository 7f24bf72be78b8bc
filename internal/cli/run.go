package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SimonStenelid/X-team/internal/orchestrator"
)

var (
	runDry   bool
	runForce bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one posting cycle",
	Long:  "Runs the daily cycle once: schedule check, content generation, validation, dedup, and publish.",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runDry, "dry-run", false, "Generate and validate but do not post")
	runCmd.Flags().BoolVar(&runForce, "force", false, "Skip the schedule gate and post now")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	app, err := newApp(runDry)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.orch.RunOnce(cmd.Context(), runForce)
	if err != nil {
		return err
	}

	switch result.Outcome {
	case orchestrator.OutcomePosted:
		fmt.Printf("Posted %s content: %s (quality %.1f)\n", result.ContentType, result.PostID, result.Score)
	case orchestrator.OutcomeNotTime:
		fmt.Printf("Not time to post: %s\n", result.Reason)
	case orchestrator.OutcomeAborted:
		fmt.Printf("Run aborted: %s\n", result.Reason)
		// Distinct exit code so cron wrappers can tell abort from error.
		app.Close()
		os.Exit(2)
	}
	return nil
}
