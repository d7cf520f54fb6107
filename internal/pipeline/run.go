// Package pipeline provides the high-level orchestration for one resume submission:
// enrichment, document assembly, export, QR rendering and the job description analyses.
package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/smart-resume/internal/config"
	"github.com/jonathan/smart-resume/internal/document"
	"github.com/jonathan/smart-resume/internal/enrich"
	"github.com/jonathan/smart-resume/internal/ingestion"
	"github.com/jonathan/smart-resume/internal/linkedin"
	"github.com/jonathan/smart-resume/internal/pipeline/steps"
	"github.com/jonathan/smart-resume/internal/rendering"
	"github.com/jonathan/smart-resume/internal/types"
)

// Headings shown above each analysis.
const (
	HeadingProfileImprovements = "LinkedIn Profile Improvement Suggestions"
	HeadingCoverLetter         = "Generated Cover Letter"
	HeadingImprovements        = "Suggested Improvements"
	HeadingExtractedSkills     = "Extracted Skills from Job Description"
	HeadingMissingSkills       = "Missing Skills (Based on Job Description)"
	HeadingInterviewQuestions  = "Possible Interview Questions"
	HeadingStrengthsWeaknesses = "Strengths and Weaknesses Analysis"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// JobIngester turns a job posting URL into text.
type JobIngester interface {
	Ingest(ctx context.Context, rawURL string) (string, *ingestion.Source, error)
}

// RunOptions holds per-run settings
type RunOptions struct {
	OnProgress ProgressCallback
	Verbose    bool
	// DocumentOnly stops after the DOCX export. No QR code, LinkedIn or analysis calls are made.
	DocumentOnly bool
}

// QRCode is the rendered profile QR image.
type QRCode struct {
	URL     string `json:"url"`
	PNG     []byte `json:"-"`
	Base64  string `json:"png_base64"`
	Caption string `json:"caption"`
}

// Analysis is one enrichment shown under a heading, with its text rendered as HTML.
type Analysis struct {
	Step    string        `json:"step"`
	Heading string        `json:"heading"`
	Result  enrich.Result `json:"result"`
	HTML    string        `json:"html,omitempty"`
}

// Result holds everything a submission produces.
type Result struct {
	ID         string              `json:"id"`
	Document   *document.Document  `json:"document"`
	ResumeText string              `json:"resume_text"`
	Download   *rendering.Download `json:"download"`
	QR         *QRCode             `json:"qr,omitempty"`

	// Summaries holds one result per experience entry sent for summarizing, in entry order.
	Summaries []enrich.Result `json:"summaries,omitempty"`
	// SkillSuggestions holds one result per experience entry, in entry order.
	SkillSuggestions    []enrich.Result `json:"skill_suggestions,omitempty"`
	ProfileImprovements *Analysis       `json:"profile_improvements,omitempty"`
	Analyses            []Analysis      `json:"analyses,omitempty"`

	JobDescription string             `json:"job_description,omitempty"`
	JobSource      *ingestion.Source  `json:"job_source,omitempty"`
	Warnings       []string           `json:"warnings"`
	Steps          []steps.StepResult `json:"steps"`
}

// Generator runs submissions. It holds no per-request state and may be shared.
type Generator struct {
	Enricher enrich.Enricher
	// Profiles supplies LinkedIn profile data. Nil skips the integration.
	Profiles linkedin.Fetcher
	// Jobs fetches postings given as job_url. Nil ignores job_url.
	Jobs   JobIngester
	Config *config.Config
}

type run struct {
	g       *Generator
	id      string
	opts    RunOptions
	tracker *steps.Tracker
	cfg     config.Config
	result  *Result
}

// Run processes one submission end to end.
//
// Validation failures return a *types.ValidationError before any enrichment
// call is made. Enrichment failures never fail the run: their error text is
// shown in place of content and the step is marked degraded.
func (g *Generator) Run(ctx context.Context, req *types.ResumeRequest, opts RunOptions) (*Result, error) {
	r := &run{
		g:       g,
		id:      uuid.New().String(),
		opts:    opts,
		tracker: steps.NewTracker(),
		cfg:     g.config(),
	}
	r.result = &Result{ID: r.id, Warnings: []string{}}
	defer func() { r.result.Steps = r.tracker.Results() }()

	if err := r.validate(req); err != nil {
		return nil, err
	}

	r.resolveJobDescription(ctx, req)
	r.linkedInProfile(ctx, req)
	r.skillSuggestions(ctx, req)

	if err := r.assemble(ctx, req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generation canceled: %w", err)
	}

	if err := r.export(req); err != nil {
		return nil, err
	}
	r.renderQR(req)

	if err := r.analyses(ctx, req); err != nil {
		return nil, err
	}

	r.logf("Generation %s finished with %d warnings", r.id, len(r.result.Warnings))
	return r.result, nil
}

func (g *Generator) config() config.Config {
	if g.Config == nil {
		return config.Default()
	}
	return g.Config.MergeWithDefaults(config.Default())
}

func (r *run) emit(step, message string, content any) {
	if r.opts.OnProgress == nil {
		return
	}
	r.opts.OnProgress(ProgressEvent{
		Step:     step,
		Category: steps.StepRegistry[step].Category,
		Message:  message,
		RunID:    r.id,
		Content:  content,
	})
}

func (r *run) logf(format string, args ...any) {
	if r.opts.Verbose {
		log.Printf("[VERBOSE] "+format, args...)
	}
}

func (r *run) warn(msg string) {
	log.Printf("[pipeline] %s: %s", r.id, msg)
	r.result.Warnings = append(r.result.Warnings, msg)
}

// start records the step as started. A dependency error here is a programming error.
func (r *run) start(step string) {
	if err := r.tracker.Start(step); err != nil {
		log.Printf("[pipeline] %s: %v", r.id, err)
	}
}

func (r *run) skip(names ...string) {
	for _, name := range names {
		r.tracker.Skip(name)
	}
}

func (r *run) skipAnalyses() bool {
	return r.opts.DocumentOnly || r.g.Enricher == nil
}

func (r *run) validate(req *types.ResumeRequest) error {
	r.start(steps.ValidateInput)
	if err := req.Validate(); err != nil {
		r.tracker.Fail(steps.ValidateInput, err)
		return err
	}
	r.tracker.Complete(steps.ValidateInput)
	r.emit(steps.ValidateInput, "Validated submission", nil)
	return nil
}

// resolveJobDescription prefers pasted text over a posting URL.
func (r *run) resolveJobDescription(ctx context.Context, req *types.ResumeRequest) {
	if r.opts.DocumentOnly {
		r.skip(steps.ResolveJobDescription)
		return
	}
	r.start(steps.ResolveJobDescription)

	switch {
	case strings.TrimSpace(req.JobDescription) != "":
		r.result.JobDescription = req.JobDescription
		_, r.result.JobSource = ingestion.FromText(req.JobDescription)

	case req.JobURL != "" && r.g.Jobs != nil:
		r.logf("Fetching job description from %s", req.JobURL)
		text, src, err := r.g.Jobs.Ingest(ctx, req.JobURL)
		if err != nil {
			r.warn(fmt.Sprintf("Could not fetch job description from %s: %v", req.JobURL, err))
			r.tracker.Degrade(steps.ResolveJobDescription, err)
			return
		}
		r.result.JobDescription = text
		r.result.JobSource = src

	case req.JobURL != "":
		r.warn("Job URL fetching is disabled; job_url was ignored.")
	}

	r.tracker.Complete(steps.ResolveJobDescription)
	r.emit(steps.ResolveJobDescription,
		fmt.Sprintf("Job description: %d chars", len(r.result.JobDescription)), r.result.JobSource)
}

func (r *run) linkedInProfile(ctx context.Context, req *types.ResumeRequest) {
	if r.skipAnalyses() || req.Options.SkipAnalyses {
		r.skip(steps.LinkedInProfile)
		return
	}
	r.start(steps.LinkedInProfile)

	if r.g.Profiles == nil || !linkedin.IsValidProfileURL(req.LinkedIn) {
		r.warn(linkedin.SkippedMessage)
		r.tracker.Complete(steps.LinkedInProfile)
		return
	}

	data, err := r.g.Profiles.FetchProfile(ctx, req.LinkedIn)
	if err != nil {
		r.warn(fmt.Sprintf("LinkedIn profile fetch failed: %v", err))
		r.tracker.Degrade(steps.LinkedInProfile, err)
		return
	}

	res := r.g.Enricher.Enrich(ctx, enrich.TaskSuggestProfileImprovements, enrich.Input{ProfileData: data.String()})
	a := newAnalysis(steps.LinkedInProfile, HeadingProfileImprovements, res)
	r.result.ProfileImprovements = &a
	r.finishEnrichment(steps.LinkedInProfile, res)
	r.emit(steps.LinkedInProfile, "Suggested LinkedIn profile improvements", a)
}

func (r *run) skillSuggestions(ctx context.Context, req *types.ResumeRequest) {
	if r.skipAnalyses() || req.Options.SkipAnalyses {
		r.skip(steps.SkillSuggestions)
		return
	}
	r.start(steps.SkillSuggestions)

	var failed error
	for i, e := range req.Experience {
		res := r.g.Enricher.Enrich(ctx, enrich.TaskExtractSkills, enrich.Input{Description: e.Description})
		r.result.SkillSuggestions = append(r.result.SkillSuggestions, res)
		if !res.OK() && failed == nil {
			failed = res.Err
		}
		r.logf("Skill suggestions for experience #%d: ok=%t", i+1, res.OK())
	}

	if failed != nil {
		r.tracker.Degrade(steps.SkillSuggestions, failed)
	} else {
		r.tracker.Complete(steps.SkillSuggestions)
	}
	r.emit(steps.SkillSuggestions,
		fmt.Sprintf("Suggested skills for %d experience entries", len(req.Experience)), r.result.SkillSuggestions)
}

func (r *run) assemble(ctx context.Context, req *types.ResumeRequest) error {
	r.start(steps.AssembleDocument)

	asm := &document.Assembler{Enricher: r.g.Enricher, SkipSummaries: req.Options.SkipSummaries}
	doc, summaries := asm.AssembleWithSummaries(ctx, req)
	r.result.Document = doc
	r.result.ResumeText = doc.PlainText()
	r.result.Summaries = summaries

	var failed error
	for _, s := range summaries {
		if !s.OK() {
			failed = s.Err
			break
		}
	}
	if failed != nil {
		r.tracker.Degrade(steps.AssembleDocument, failed)
	} else {
		r.tracker.Complete(steps.AssembleDocument)
	}

	r.logf("Assembled document: %d paragraphs, %d summaries", len(doc.Paragraphs()), len(summaries))
	r.emit(steps.AssembleDocument, "Assembled resume document", doc)
	return nil
}

func (r *run) export(req *types.ResumeRequest) error {
	r.start(steps.ExportDocx)

	data, err := rendering.RenderDOCX(r.result.Document)
	if err != nil {
		r.tracker.Fail(steps.ExportDocx, err)
		return fmt.Errorf("docx export failed: %w", err)
	}
	r.result.Download = rendering.Export(req.Name, data, rendering.ExportOptions{SanitizeNames: r.cfg.SanitizeDownloadNames})
	if r.result.Download.Unsafe {
		r.warn(fmt.Sprintf("Name %q was used unescaped in the download filename and link.", req.Name))
	}

	r.tracker.Complete(steps.ExportDocx)
	r.emit(steps.ExportDocx, fmt.Sprintf("Exported %s (%d bytes)", r.result.Download.Filename, r.result.Download.Size), nil)
	return nil
}

func (r *run) renderQR(req *types.ResumeRequest) {
	if r.opts.DocumentOnly {
		r.skip(steps.RenderQR)
		return
	}
	r.start(steps.RenderQR)

	url := rendering.ProfileURL(r.cfg.ProfileURLBase, req.LinkedIn)
	png, err := rendering.EncodeQR(url, r.cfg.QRModulePixels)
	if err != nil {
		r.warn(fmt.Sprintf("QR code not rendered: %v", err))
		r.tracker.Fail(steps.RenderQR, err)
		return
	}

	r.result.QR = &QRCode{
		URL:     url,
		PNG:     png,
		Base64:  base64.StdEncoding.EncodeToString(png),
		Caption: rendering.QRCaption,
	}
	r.tracker.Complete(steps.RenderQR)
	r.emit(steps.RenderQR, "Rendered QR code for "+url, nil)
}

// analysisSlot is the position of each analysis in Result.Analyses.
const (
	slotCoverLetter = iota
	slotImprovements
	slotExtractedSkills
	slotMissingSkills
	slotInterviewQuestions
	slotStrengthsWeaknesses
	analysisCount
)

// analyses runs the job description and resume analyses. Independent
// analyses share an errgroup bounded by MaxConcurrency; missing skills always
// follows extraction because it consumes the extracted text.
func (r *run) analyses(ctx context.Context, req *types.ResumeRequest) error {
	names := []string{steps.CoverLetter, steps.Improvements, steps.ExtractQualifications,
		steps.MissingSkills, steps.InterviewQuestions, steps.StrengthsWeaknesses}
	if r.skipAnalyses() || req.Options.SkipAnalyses {
		r.skip(names...)
		return nil
	}

	job := r.result.JobDescription
	resume := r.result.ResumeText
	out := make([]Analysis, analysisCount)

	var g errgroup.Group
	g.SetLimit(max(r.cfg.MaxConcurrency, 1))

	g.Go(func() error {
		out[slotCoverLetter] = r.analyze(ctx, steps.CoverLetter, HeadingCoverLetter,
			enrich.TaskGenerateCoverLetter, enrich.Input{Name: req.Name, JobDescription: job})
		return nil
	})
	g.Go(func() error {
		out[slotImprovements] = r.analyze(ctx, steps.Improvements, HeadingImprovements,
			enrich.TaskSuggestImprovements, enrich.Input{JobDescription: job, Skills: req.Skills})
		return nil
	})
	g.Go(func() error {
		extracted := r.analyze(ctx, steps.ExtractQualifications, HeadingExtractedSkills,
			enrich.TaskExtractQualifications, enrich.Input{JobDescription: job})
		out[slotExtractedSkills] = extracted
		out[slotMissingSkills] = r.analyze(ctx, steps.MissingSkills, HeadingMissingSkills,
			enrich.TaskHighlightMissingSkills, enrich.Input{Skills: req.Skills, RequiredSkills: extracted.Result.Display()})
		return nil
	})
	g.Go(func() error {
		out[slotInterviewQuestions] = r.analyze(ctx, steps.InterviewQuestions, HeadingInterviewQuestions,
			enrich.TaskGenerateInterviewQuestions, enrich.Input{ResumeText: resume})
		return nil
	})
	g.Go(func() error {
		out[slotStrengthsWeaknesses] = r.analyze(ctx, steps.StrengthsWeaknesses, HeadingStrengthsWeaknesses,
			enrich.TaskAnalyzeStrengthsWeaknesses, enrich.Input{ResumeText: resume})
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("generation canceled: %w", err)
	}

	r.result.Analyses = out
	return nil
}

func (r *run) analyze(ctx context.Context, step, heading string, task enrich.Task, in enrich.Input) Analysis {
	if err := r.tracker.Start(step); err != nil {
		log.Printf("[pipeline] %s: %v", r.id, err)
		return newAnalysis(step, heading, enrich.Result{Task: task, Err: err})
	}

	res := r.g.Enricher.Enrich(ctx, task, in)
	a := newAnalysis(step, heading, res)
	r.finishEnrichment(step, res)
	r.emit(step, heading, a)
	return a
}

func (r *run) finishEnrichment(step string, res enrich.Result) {
	if res.OK() {
		r.tracker.Complete(step)
		return
	}
	r.tracker.Degrade(step, res.Err)
}

func newAnalysis(step, heading string, res enrich.Result) Analysis {
	return Analysis{
		Step:    step,
		Heading: heading,
		Result:  res,
		HTML:    MarkdownHTML(res.Display()),
	}
}

// MarkdownHTML renders generated markdown as HTML. Raw HTML in the input is
// not passed through. It returns "" when rendering fails.
func MarkdownHTML(text string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		log.Printf("[pipeline] markdown rendering failed: %v", err)
		return ""
	}
	return buf.String()
}
