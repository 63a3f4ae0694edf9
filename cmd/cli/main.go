package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)
	api := &apiClient{}

	rootCmd := &cobra.Command{
		Use:           "achledger-cli",
		Short:         "ACH ledger CLI tool",
		Long:          `A command line interface for submitting transfers, running batches and handling NACHA files through the achledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			api.configure(baseURL, timeout)
		},
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", envOr("ACHLEDGER_URL", "http://localhost:8080"), "Base URL of the achledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(
		transfersCmd(api),
		batchCmd(api),
		calendarCmd(api),
		filesCmd(api),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
