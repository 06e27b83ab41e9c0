// Package main provides the entry point for the AI exposure measurement CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ai_exposure",
	Short: "AI exposure measurement pipeline",
	Long:  "ai_exposure derives AI-exposure measures from yearly job posting batches and résumé employment histories: per-skill co-occurrence scores, job-level scores, company posting shares, and person-based company-year measures.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
