package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maharani/glowbrief/internal/config"
	"github.com/maharani/glowbrief/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the HTTP server that accepts brief submissions, forwards them to the
workflow webhook and serves result documents. Without DATABASE_URL and
N8N_PRODUCTION_WEBHOOK the server runs in mock mode: submissions are
validated and acknowledged but nothing is persisted or dispatched.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := config.Load()
	if servePort > 0 {
		cfg.Port = servePort
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
