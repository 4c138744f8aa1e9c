// Package main provides the entry point for the GlowBrief intake backend.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "glowbrief",
	Short: "GlowBrief brief intake backend",
	Long:  "GlowBrief receives cosmetics product brief submissions, persists them and forwards them to the n8n workflow engine that assembles the concept report.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
