// Package types provides the request and profile types shared by the resume generator.
package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Entry caps mirror the number of form slots offered for each repeated section.
const (
	MaxExperienceEntries = 5
	MaxEducationEntries  = 3
	MaxProjectEntries    = 5
)

// RequiredFieldsMessage is shown when a submission lacks name, email or skills.
const RequiredFieldsMessage = "Please fill in all required fields (Name, Email, Skills)."

// Profile holds the candidate's personal details.
// Skills is a single comma-separated string, split only when the document is assembled.
type Profile struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Skills   string `json:"skills" validate:"required"`
}

// ExperienceEntry is one job in the experience section.
type ExperienceEntry struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Dates       string `json:"dates"`
	Description string `json:"description"`
}

// EducationEntry is one degree in the education section.
type EducationEntry struct {
	Degree      string `json:"degree"`
	School      string `json:"school"`
	Dates       string `json:"dates"`
	Description string `json:"description"`
}

// ProjectEntry is one project in the projects section.
type ProjectEntry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Options toggles optional behavior of a single generation.
type Options struct {
	// SkipSummaries keeps experience descriptions verbatim instead of summarizing them.
	SkipSummaries bool `json:"skip_summaries,omitempty"`
	// SkipAnalyses disables the job-description analyses that follow the document.
	SkipAnalyses bool `json:"skip_analyses,omitempty"`
}

// ResumeRequest is one form submission.
type ResumeRequest struct {
	Profile
	Experience     []ExperienceEntry `json:"experience,omitempty" validate:"max=5"`
	Education      []EducationEntry  `json:"education,omitempty" validate:"max=3"`
	Projects       []ProjectEntry    `json:"projects,omitempty" validate:"max=5"`
	JobDescription string            `json:"job_description,omitempty"`
	JobURL         string            `json:"job_url,omitempty" validate:"omitempty,url"`
	Options        Options           `json:"options,omitempty"`
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError is returned when a ResumeRequest fails validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Field, f.Rule))
	}
	return fmt.Sprintf("invalid resume request: %s", strings.Join(parts, ", "))
}

// MissingRequired reports whether any required field was absent.
func (e *ValidationError) MissingRequired() bool {
	for _, f := range e.Fields {
		if f.Rule == "required" {
			return true
		}
	}
	return false
}

// Message returns the text shown to the user for this error.
func (e *ValidationError) Message() string {
	if e.MissingRequired() {
		return RequiredFieldsMessage
	}
	return e.Error()
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks presence of the required fields and the entry caps.
// Whitespace-only values count as present; no other content checks are made.
func (r *ResumeRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: fe.Field(),
			Rule:  fe.Tag(),
		})
	}
	return out
}
