package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonathan/smart-resume/internal/enrich"
	"github.com/jonathan/smart-resume/internal/observability"
	"github.com/jonathan/smart-resume/internal/schemas"
	"github.com/spf13/cobra"
)

var (
	enrichTask       string
	enrichInput      string
	enrichConfigPath string
	enrichJSON       bool
	enrichVerbose    bool
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run a single enrichment task",
	Long: `Runs one enrichment task against Gemini and prints the result.

--in names a JSON file (or "-" for stdin) holding the task input, for example:

  {"job_description": "...", "name": "Ada Lovelace"}

Fields a task does not use are ignored. Tasks:
  summarize-experience, extract-skills, generate-cover-letter, suggest-improvements,
  extract-qualifications, highlight-missing-skills, suggest-profile-improvements,
  generate-interview-questions, analyze-strengths-weaknesses`,
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().StringVarP(&enrichTask, "task", "t", "", "Enrichment task name")
	enrichCmd.Flags().StringVarP(&enrichInput, "in", "i", "", `Path to the task input JSON ("-" for stdin)`)
	enrichCmd.Flags().StringVar(&enrichConfigPath, "config", "", "Path to a JSON config file layered over environment settings")
	enrichCmd.Flags().BoolVar(&enrichJSON, "json", false, "Print the result as JSON")
	enrichCmd.Flags().BoolVarP(&enrichVerbose, "verbose", "v", false, "Print detailed debug information")

	_ = enrichCmd.MarkFlagRequired("task")
	_ = enrichCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, _ []string) error {
	task, err := enrich.ParseTask(enrichTask)
	if err != nil {
		return err
	}

	in, err := readEnrichmentInput(cmd.InOrStdin(), enrichInput)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(enrichConfigPath, enrichVerbose)
	if err != nil {
		return err
	}

	ctx := context.Background()
	enricher, closeFn, err := newEnricher(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	return printEnrichment(cmd.OutOrStdout(), enricher.Enrich(ctx, task, in), enrichJSON)
}

// readEnrichmentInput reads path ("-" for r), validates it against the
// enrichment input schema and decodes it.
func readEnrichmentInput(r io.Reader, path string) (enrich.Input, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(r)
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return enrich.Input{}, fmt.Errorf("failed to read task input: %w", err)
	}

	if err := schemas.ValidateEnrichmentInput(data); err != nil {
		return enrich.Input{}, err
	}

	var in enrich.Input
	if err := json.Unmarshal(data, &in); err != nil {
		return enrich.Input{}, fmt.Errorf("failed to parse task input: %w", err)
	}
	return in, nil
}

// printEnrichment prints res and reports a failed call as an error.
func printEnrichment(w io.Writer, res enrich.Result, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(w, string(data))
	} else {
		observability.NewPrinter(w).PrintEnrichment(res.Task.Title(), res)
	}

	if !res.OK() {
		return fmt.Errorf("enrichment %s failed (%s)", res.Task, res.Reason())
	}
	return nil
}
