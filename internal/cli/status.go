package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/SimonStenelid/X-team/internal/config"
	"github.com/SimonStenelid/X-team/internal/content"
	"github.com/SimonStenelid/X-team/internal/store"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ X-team Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pipeline status",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("📊 X-team Status")
		fmt.Printf("Version: %s\n", version)

		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Config:  ✗ Unable to load (%v)\n", err)
			return
		}

		path, _ := config.ConfigPath()
		if _, err := os.Stat(path); err == nil {
			fmt.Println("Config:  ✓ Found (" + path + ")")
		} else {
			fmt.Println("Config:  ✗ Not found, using defaults (" + path + ")")
		}

		if cfg.Providers.OpenAI.APIKey != "" {
			fmt.Println("LLM Key: ✓ Found")
		} else {
			fmt.Println("LLM Key: ✗ Not found")
		}
		if cfg.X.Complete() {
			fmt.Println("X Creds: ✓ Complete")
		} else {
			fmt.Println("X Creds: ✗ Incomplete (dry-run only)")
		}

		printState(cfg)
	},
}

func printState(cfg *config.Config) {
	dbPath := filepath.Join(cfg.Paths.DataDir, "xteam.db")
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Println("State:   ✗ No database yet (" + dbPath + ")")
		return
	}

	st, err := store.Open(dbPath)
	if err != nil {
		fmt.Printf("State:   ✗ Unable to open database (%v)\n", err)
		return
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	state, err := st.LoadState(ctx, time.Now())
	if err != nil {
		fmt.Printf("State:   ✗ Unable to load (%v)\n", err)
		return
	}

	fmt.Println("State:   ✓ Loaded (" + dbPath + ")")
	if state.LastPostTime != nil {
		fmt.Printf("Last post:      %s\n", state.LastPostTime.Format(time.RFC3339))
	} else {
		fmt.Println("Last post:      never")
	}
	if state.NextPostScheduled != nil {
		fmt.Printf("Next scheduled: %s\n", state.NextPostScheduled.Format(time.RFC3339))
	} else {
		fmt.Println("Next scheduled: not set")
	}
	fmt.Printf("Week counts (since %s):\n", state.WeekStartDate)
	for _, t := range content.AllTypes() {
		fmt.Printf("  %-8s %d\n", t, state.WeekCounts[t])
	}
}
