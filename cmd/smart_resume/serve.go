package main

import (
	"context"
	"fmt"

	"github.com/jonathan/smart-resume/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort       int
	serveConfigPath string
	serveVerbose    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the generator over REST:

  POST /resumes                    full generation (JSON result)
  POST /resumes/stream             full generation with SSE progress
  POST /resumes/docx               document only, as a .docx attachment
  POST /enrichments/{task}         a single enrichment task
  POST /job-descriptions/extract   text from an uploaded file, URL or pasted text
  GET  /qr?data=...                QR code PNG`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to PORT or 8080)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to a JSON config file layered over environment settings")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Print detailed debug information")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(serveConfigPath, serveVerbose)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	ctx := context.Background()
	gen, closeFn, err := newGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	srv, err := server.New(server.Config{
		Port:      cfg.Port,
		App:       cfg,
		Generator: gen,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
