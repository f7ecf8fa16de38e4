// Package main provides the resume_analyzer command line tool, HTTP server and queue worker.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_analyzer",
	Short: "Resume vs job description keyword analyzer",
	Long: "resume_analyzer compares a resume against a job description, reports the keyword match, " +
		"segments the resume into sections and suggests improvements. It runs as a CLI, an HTTP API or a queue worker.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
