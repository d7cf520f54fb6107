// Package steps provides step definitions, dependency validation, and step
// tracking for a resume generation run.
package steps

import (
	"fmt"
	"sync"
	"time"
)

// Step names.
const (
	ValidateInput         = "validate_input"
	ResolveJobDescription = "resolve_job_description"
	LinkedInProfile       = "linkedin_profile"
	SkillSuggestions      = "skill_suggestions"
	AssembleDocument      = "assemble_document"
	ExportDocx            = "export_docx"
	RenderQR              = "render_qr"
	CoverLetter           = "cover_letter"
	Improvements          = "improvements"
	ExtractQualifications = "extract_qualifications"
	MissingSkills         = "missing_skills"
	InterviewQuestions    = "interview_questions"
	StrengthsWeaknesses   = "strengths_weaknesses"
)

// Step categories.
const (
	CategoryIngestion = "ingestion"
	CategoryDocument  = "document"
	CategoryExport    = "export"
	CategoryAnalysis  = "analysis"
)

// Step statuses.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusSkipped    = "skipped"
	// StatusDegraded marks a step that produced output despite an error,
	// such as an enrichment whose error text stands in for its content.
	StatusDegraded = "degraded"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	ValidateInput: {
		Name:     ValidateInput,
		Category: CategoryIngestion,
	},
	ResolveJobDescription: {
		Name:         ResolveJobDescription,
		Category:     CategoryIngestion,
		Dependencies: []string{ValidateInput},
	},
	LinkedInProfile: {
		Name:         LinkedInProfile,
		Category:     CategoryIngestion,
		Dependencies: []string{ValidateInput},
	},
	SkillSuggestions: {
		Name:         SkillSuggestions,
		Category:     CategoryAnalysis,
		Dependencies: []string{ValidateInput},
	},
	AssembleDocument: {
		Name:         AssembleDocument,
		Category:     CategoryDocument,
		Dependencies: []string{ValidateInput},
	},
	ExportDocx: {
		Name:         ExportDocx,
		Category:     CategoryExport,
		Dependencies: []string{AssembleDocument},
	},
	RenderQR: {
		Name:         RenderQR,
		Category:     CategoryExport,
		Dependencies: []string{ValidateInput},
	},
	CoverLetter: {
		Name:         CoverLetter,
		Category:     CategoryAnalysis,
		Dependencies: []string{ResolveJobDescription},
	},
	Improvements: {
		Name:         Improvements,
		Category:     CategoryAnalysis,
		Dependencies: []string{ResolveJobDescription},
	},
	ExtractQualifications: {
		Name:         ExtractQualifications,
		Category:     CategoryAnalysis,
		Dependencies: []string{ResolveJobDescription},
	},
	MissingSkills: {
		Name:         MissingSkills,
		Category:     CategoryAnalysis,
		Dependencies: []string{ExtractQualifications},
	},
	InterviewQuestions: {
		Name:         InterviewQuestions,
		Category:     CategoryAnalysis,
		Dependencies: []string{AssembleDocument},
	},
	StrengthsWeaknesses: {
		Name:         StrengthsWeaknesses,
		Category:     CategoryAnalysis,
		Dependencies: []string{AssembleDocument},
	},
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s: missing dependencies: %v", e.Step, e.MissingDependencies)
}

// StepResult records the outcome of one step in a run.
type StepResult struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Duration int64  `json:"duration_ms"`
	Error    string `json:"error,omitempty"`

	started time.Time
}

// Tracker records step progress for one run. It is safe for concurrent use.
type Tracker struct {
	mu    sync.Mutex
	steps map[string]*StepResult
	order []string
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{steps: make(map[string]*StepResult)}
}

// ValidateDependencies checks that every dependency of stepName has completed.
// Skipped and degraded dependencies count as met.
func (t *Tracker) ValidateDependencies(stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var missing []string
	for _, dep := range def.Dependencies {
		s, ok := t.steps[dep]
		if !ok || !met(s.Status) {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return &DependencyError{Step: stepName, MissingDependencies: missing}
	}
	return nil
}

func met(status string) bool {
	return status == StatusCompleted || status == StatusSkipped || status == StatusDegraded
}

// Start marks a step in progress after checking its dependencies.
func (t *Tracker) Start(stepName string) error {
	if err := t.ValidateDependencies(stepName); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.steps[stepName]; !exists {
		t.order = append(t.order, stepName)
	}
	t.steps[stepName] = &StepResult{
		Step:     stepName,
		Category: StepRegistry[stepName].Category,
		Status:   StatusInProgress,
		started:  time.Now(),
	}
	return nil
}

// Complete marks a started step completed.
func (t *Tracker) Complete(stepName string) {
	t.finish(stepName, StatusCompleted, nil)
}

// Fail marks a started step failed.
func (t *Tracker) Fail(stepName string, err error) {
	t.finish(stepName, StatusFailed, err)
}

// Degrade marks a started step as finished with an error that did not stop it.
func (t *Tracker) Degrade(stepName string, err error) {
	t.finish(stepName, StatusDegraded, err)
}

// Skip records a step that was not run.
func (t *Tracker) Skip(stepName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.steps[stepName]; !exists {
		t.order = append(t.order, stepName)
	}
	t.steps[stepName] = &StepResult{
		Step:     stepName,
		Category: StepRegistry[stepName].Category,
		Status:   StatusSkipped,
	}
}

func (t *Tracker) finish(stepName, status string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.steps[stepName]
	if !ok {
		return
	}
	s.Status = status
	s.Duration = time.Since(s.started).Milliseconds()
	if err != nil {
		s.Error = err.Error()
	}
}

// Status returns the status of a step, or "" when it was never recorded.
func (t *Tracker) Status(stepName string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.steps[stepName]; ok {
		return s.Status
	}
	return ""
}

// Results returns a copy of every recorded step in the order first recorded.
func (t *Tracker) Results() []StepResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]StepResult, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, *t.steps[name])
	}
	return out
}
