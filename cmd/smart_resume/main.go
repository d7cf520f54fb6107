// Package main provides the entry point for the Smart Resume Generator CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "smart_resume",
	Short: "Smart Resume Generator",
	Long: `Smart Resume Generator turns a profile and its experience, education and project entries
into a .docx resume, enriched by Gemini, with a profile QR code and job description analyses.`,
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
