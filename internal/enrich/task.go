// Package enrich turns free-text resume fields into generative-text requests
// and reports each outcome as a typed Result.
package enrich

import (
	"fmt"

	"github.com/jonathan/smart-resume/internal/llm"
	"github.com/jonathan/smart-resume/internal/prompts"
)

// Task identifies one enrichment request kind.
type Task string

// The enrichment tasks. Their values double as prompt keys and URL segments.
const (
	TaskSummarizeExperience        Task = "summarize-experience"
	TaskExtractSkills              Task = "extract-skills"
	TaskGenerateCoverLetter        Task = "generate-cover-letter"
	TaskSuggestImprovements        Task = "suggest-improvements"
	TaskExtractQualifications      Task = "extract-qualifications"
	TaskHighlightMissingSkills     Task = "highlight-missing-skills"
	TaskSuggestProfileImprovements Task = "suggest-profile-improvements"
	TaskGenerateInterviewQuestions Task = "generate-interview-questions"
	TaskAnalyzeStrengthsWeaknesses Task = "analyze-strengths-weaknesses"
)

type taskInfo struct {
	title  string
	action string // completes "Error <action>: ..."
	tier   llm.ModelTier
}

var tasks = map[Task]taskInfo{
	TaskSummarizeExperience:        {"Experience Summary", "summarizing experience", llm.TierStandard},
	TaskExtractSkills:              {"Skill Suggestions", "generating skills", llm.TierLite},
	TaskGenerateCoverLetter:        {"Cover Letter", "generating cover letter", llm.TierAdvanced},
	TaskSuggestImprovements:        {"Suggested Improvements", "generating suggestions", llm.TierStandard},
	TaskExtractQualifications:      {"Extracted Skills and Qualifications", "extracting skills and qualifications", llm.TierLite},
	TaskHighlightMissingSkills:     {"Missing Skills", "highlighting missing skills", llm.TierLite},
	TaskSuggestProfileImprovements: {"LinkedIn Profile Suggestions", "suggesting profile improvements", llm.TierStandard},
	TaskGenerateInterviewQuestions: {"Interview Questions", "generating interview questions", llm.TierStandard},
	TaskAnalyzeStrengthsWeaknesses: {"Strengths and Weaknesses", "analyzing strengths and weaknesses", llm.TierStandard},
}

// AllTasks lists every task in the order the analyses are presented.
func AllTasks() []Task {
	return []Task{
		TaskSummarizeExperience,
		TaskExtractSkills,
		TaskSuggestProfileImprovements,
		TaskGenerateCoverLetter,
		TaskSuggestImprovements,
		TaskExtractQualifications,
		TaskHighlightMissingSkills,
		TaskGenerateInterviewQuestions,
		TaskAnalyzeStrengthsWeaknesses,
	}
}

// ParseTask converts a string into a known Task.
func ParseTask(s string) (Task, error) {
	t := Task(s)
	if _, ok := tasks[t]; !ok {
		return "", &InvalidTaskError{Task: s}
	}
	return t, nil
}

// Valid reports whether t is a known task.
func (t Task) Valid() bool {
	_, ok := tasks[t]
	return ok
}

// Title is the human-readable heading for the task's output.
func (t Task) Title() string {
	return tasks[t].title
}

// Tier is the model tier the task runs on.
func (t Task) Tier() llm.ModelTier {
	if info, ok := tasks[t]; ok {
		return info.tier
	}
	return llm.TierStandard
}

// Input carries the payload fields a task's prompt may reference.
// Fields a task does not use are ignored.
type Input struct {
	Description    string `json:"description,omitempty"`
	Name           string `json:"name,omitempty"`
	JobDescription string `json:"job_description,omitempty"`
	Skills         string `json:"skills,omitempty"`
	RequiredSkills string `json:"required_skills,omitempty"`
	ProfileData    string `json:"profile_data,omitempty"`
	ResumeText     string `json:"resume_text,omitempty"`
}

func (in Input) values() map[string]string {
	return map[string]string{
		"Description":    in.Description,
		"Name":           in.Name,
		"JobDescription": in.JobDescription,
		"Skills":         in.Skills,
		"RequiredSkills": in.RequiredSkills,
		"ProfileData":    in.ProfileData,
		"ResumeText":     in.ResumeText,
	}
}

// BuildPrompt renders the prompt for a task. The result depends only on the
// task and input.
func BuildPrompt(task Task, in Input) (string, error) {
	if !task.Valid() {
		return "", &InvalidTaskError{Task: string(task)}
	}

	template, err := prompts.Get(prompts.EnrichmentFile, string(task))
	if err != nil {
		return "", fmt.Errorf("failed to load prompt for %s: %w", task, err)
	}

	return render(task, template, in)
}

// render fills a task template. A placeholder with no matching Input field
// is an error rather than literal text in the prompt.
func render(task Task, template string, in Input) (string, error) {
	values := in.values()
	for _, key := range prompts.Placeholders(template) {
		if _, ok := values[key]; !ok {
			return "", fmt.Errorf("prompt for %s references unknown field %q", task, key)
		}
	}
	return prompts.Format(template, values), nil
}
