package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SimonStenelid/X-team/internal/orchestrator"
	"github.com/SimonStenelid/X-team/internal/schedule"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the posting loop continuously",
	Long:  "Wakes up on an interval and runs one posting cycle each time the schedule allows. A file lock prevents two daemons from sharing one data directory.",
	RunE:  runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	app, err := newApp(false)
	if err != nil {
		return err
	}
	defer app.Close()

	lock := schedule.NewFileLock(app.cfg.Daemon.LockPath)
	acquired, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("another daemon already holds %s", app.cfg.Daemon.LockPath)
	}
	defer lock.Unlock()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printHeader("X-team Daemon")
	fmt.Printf("Check interval: %s\n", app.cfg.Daemon.CheckInterval)
	slog.Info("Daemon started", "interval", app.cfg.Daemon.CheckInterval, "lock", app.cfg.Daemon.LockPath)

	for {
		interval := app.cfg.Daemon.CheckInterval

		result, err := app.orch.RunOnce(ctx, false)
		switch {
		case err != nil:
			slog.Error("Posting cycle failed", "error", err)
			interval = app.cfg.Daemon.ErrorBackoff
		case result.Outcome == orchestrator.OutcomePosted:
			slog.Info("Cycle posted", "type", result.ContentType, "post_id", result.PostID)
		}

		select {
		case <-ctx.Done():
			slog.Info("Daemon stopping")
			return nil
		case <-time.After(interval):
		}
	}
}
