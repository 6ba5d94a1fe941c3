// Package main provides the entry point for the AI Interview Screener HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "AI Interview Screener HTTP API Server",
	Long:  "AI Interview Screener ingests resumes, generates interview questions from job descriptions, conducts automated phone interviews over Twilio, and scores the answers.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
