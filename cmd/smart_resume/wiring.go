package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jonathan/smart-resume/internal/config"
	"github.com/jonathan/smart-resume/internal/enrich"
	"github.com/jonathan/smart-resume/internal/fetch"
	"github.com/jonathan/smart-resume/internal/ingestion"
	"github.com/jonathan/smart-resume/internal/linkedin"
	"github.com/jonathan/smart-resume/internal/llm"
	"github.com/jonathan/smart-resume/internal/pipeline"
)

// loadConfig reads settings from the environment, layers the optional JSON
// file over them, and applies the --verbose flag.
func loadConfig(path string, verbose bool) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrMissingAPIKey) {
		return nil, err
	}

	if path != "" {
		fileCfg, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		merged := fileCfg.MergeWithDefaults(*cfg)
		cfg = &merged
	}

	cfg.Verbose = cfg.Verbose || verbose
	if err := cfg.ValidateRanges(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newEnricher connects to Gemini. The returned close function releases the client.
func newEnricher(ctx context.Context, cfg *config.Config) (enrich.Enricher, func(), error) {
	if cfg.APIKey == "" {
		return nil, func() {}, config.ErrMissingAPIKey
	}

	client, err := llm.NewClient(ctx, llm.SingleModelConfig(cfg.Model), cfg.APIKey)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to create LLM client: %w", err)
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Printf("[llm] close failed: %v", err)
		}
	}

	return enrich.NewClient(client, enrich.WithTimeout(cfg.EnrichTimeout), enrich.WithVerbose(cfg.Verbose)), closeFn, nil
}

// newGenerator wires a Generator from cfg. Without a credential the generator
// still builds documents, exports and QR codes, but makes no enrichment calls.
func newGenerator(ctx context.Context, cfg *config.Config) (*pipeline.Generator, func(), error) {
	enricher, closeFn, err := newEnricher(ctx, cfg)
	switch {
	case errors.Is(err, config.ErrMissingAPIKey):
		log.Printf("[config] WARNING: %v; enrichment disabled", err)
	case err != nil:
		return nil, nil, err
	}

	jobs := &ingestion.URLIngester{Fetcher: fetch.New(), Verbose: cfg.Verbose}
	if cfg.UseBrowser {
		jobs.Renderer = fetch.ChromeRenderer{Verbose: cfg.Verbose}
	}

	return &pipeline.Generator{
		Enricher: enricher,
		Profiles: linkedin.StubFetcher{},
		Jobs:     jobs,
		Config:   cfg,
	}, closeFn, nil
}
