// Package cli implements the xteam command-line interface.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/SimonStenelid/X-team/internal/cli.version=1.2.3"
	version = "1.0.0"
	logo    = "\n" +
		" __  __     _\n" +
		" \\ \\/ /    | |_ ___  __ _ _ __ ___\n" +
		"  \\  /_____| __/ _ \\/ _` | '_ ` _ \\\n" +
		"  /  \\_____| ||  __/ (_| | | | | | |\n" +
		" /_/\\_\\     \\__\\___|\\__,_|_| |_| |_|\n"
)

var rootCmd = &cobra.Command{
	Use:   "xteam",
	Short: "X-team - Autonomous X posting pipeline",
	Long:  color.CyanString(logo) + "\nAn autonomous content pipeline that plans, generates, checks, and posts one piece of X content per day.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
}
