package main

import (
	"context"
	"fmt"
	"os"

	"github.com/launchkit/launchkit/internal/app"
	"github.com/spf13/cobra"
)

// Version information (set at build time with -ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "launchkit",
	Short:   "LaunchKit - SaaS starter with session gating and Stripe subscription sync",
	Long:    `LaunchKit is a starter application wiring session-based route guarding with webhook-driven subscription state synchronization against Stripe.`,
	Version: Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run(context.Background(), Version)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("LaunchKit %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
