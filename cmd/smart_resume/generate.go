package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/smart-resume/internal/observability"
	"github.com/jonathan/smart-resume/internal/pipeline"
	"github.com/jonathan/smart-resume/internal/rendering"
	"github.com/jonathan/smart-resume/internal/schemas"
	"github.com/jonathan/smart-resume/internal/types"
	"github.com/spf13/cobra"
)

var (
	generateInput        string
	generateOutDir       string
	generateConfigPath   string
	generateDocumentOnly bool
	generateVerbose      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a resume from a JSON submission",
	Long: `Validates a resume submission, runs the full generation and writes the results to --out:

  <name>_resume.docx   the resume document
  profile_qr.png       the profile QR code
  result.json          the full generation result

A summary of the document, analyses and warnings is printed to stdout.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateInput, "in", "i", "", "Path to the resume request JSON file")
	generateCmd.Flags().StringVarP(&generateOutDir, "out", "o", ".", "Output directory")
	generateCmd.Flags().StringVar(&generateConfigPath, "config", "", "Path to a JSON config file layered over environment settings")
	generateCmd.Flags().BoolVar(&generateDocumentOnly, "document-only", false, "Stop after the .docx export")
	generateCmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "Print detailed debug information")

	_ = generateCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(generateConfigPath, generateVerbose)
	if err != nil {
		return err
	}

	req, err := readResumeRequest(generateInput)
	if err != nil {
		return err
	}

	ctx := context.Background()
	gen, closeFn, err := newGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	out := cmd.OutOrStdout()
	opts := pipeline.RunOptions{
		Verbose:      cfg.Verbose,
		DocumentOnly: generateDocumentOnly,
	}
	if cfg.Verbose {
		opts.OnProgress = func(e pipeline.ProgressEvent) {
			_, _ = fmt.Fprintf(out, "  → [%s] %s\n", e.Step, e.Message)
		}
	}

	result, err := gen.Run(ctx, req, opts)
	if err != nil {
		if msg, ok := requiredFieldsMessage(err); ok {
			return fmt.Errorf("%s", msg)
		}
		return err
	}

	paths, err := writeResult(generateOutDir, req.Name, result)
	if err != nil {
		return err
	}

	printResult(observability.NewPrinter(out), result)
	for _, p := range paths {
		_, _ = fmt.Fprintf(out, "Wrote %s\n", p)
	}
	return nil
}

// readResumeRequest validates path against the resume request schema and decodes it.
func readResumeRequest(path string) (*types.ResumeRequest, error) {
	if err := schemas.ValidateResumeRequestFile(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var req types.ResumeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &req, nil
}

func requiredFieldsMessage(err error) (string, bool) {
	var verr *types.ValidationError
	if !errors.As(err, &verr) {
		return "", false
	}
	return verr.Message(), true
}

// writeResult writes the document, QR image and result JSON into dir and
// returns the written paths. The on-disk filename is always sanitized.
func writeResult(dir, name string, result *pipeline.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	write := func(filename string, data []byte) error {
		path := filepath.Join(dir, filename)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}

	docx, err := rendering.DecodeBase64(result.Download.Base64)
	if err != nil {
		return nil, err
	}
	if err := write(rendering.SanitizeFilename(name)+"_resume.docx", docx); err != nil {
		return nil, err
	}

	if result.QR != nil {
		if err := write("profile_qr.png", result.QR.PNG); err != nil {
			return nil, err
		}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := write("result.json", data); err != nil {
		return nil, err
	}

	return written, nil
}

func printResult(p *observability.Printer, result *pipeline.Result) {
	p.PrintJobSource(result.JobSource)
	p.PrintDocument(result.Document)
	for i, s := range result.SkillSuggestions {
		p.PrintEnrichment(fmt.Sprintf("Skill Suggestions for Experience %d", i+1), s)
	}
	if result.ProfileImprovements != nil {
		p.PrintEnrichment(result.ProfileImprovements.Heading, result.ProfileImprovements.Result)
	}
	for _, a := range result.Analyses {
		p.PrintEnrichment(a.Heading, a.Result)
	}
	p.PrintDownload(result.Download)
	p.PrintWarnings(result.Warnings)
}
