package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/smart-resume/internal/enrich"
	"github.com/jonathan/smart-resume/internal/types"
)

// Section heading texts.
const (
	SkillsHeading     = "Skills"
	ExperienceHeading = "Experience"
	EducationHeading  = "Education"
	ProjectsHeading   = "Projects"
)

// Assembler builds documents. With a nil Enricher it is a pure function of its input.
type Assembler struct {
	Enricher enrich.Enricher
	// SkipSummaries keeps experience descriptions verbatim even when an Enricher is set.
	SkipSummaries bool
}

// Assemble builds the document for a submission.
func (a *Assembler) Assemble(ctx context.Context, req *types.ResumeRequest) *Document {
	doc, _ := a.AssembleWithSummaries(ctx, req)
	return doc
}

// AssembleWithSummaries builds the document and also returns the summary
// result of every experience entry that was sent for enrichment, in entry order.
// A failed summary still replaces the description with its display text.
func (a *Assembler) AssembleWithSummaries(ctx context.Context, req *types.ResumeRequest) (*Document, []enrich.Result) {
	var summaries []enrich.Result

	doc := &Document{Sections: make([]Section, 0, len(SectionOrder))}
	doc.Sections = append(doc.Sections, headerSection(&req.Profile))
	doc.Sections = append(doc.Sections, skillsSection(req.Skills))

	experience := Section{ID: SectionExperience, Heading: heading(2, ExperienceHeading), Entries: []Entry{}}
	for _, e := range req.Experience {
		description := e.Description
		if a.summarize() && e.Description != "" {
			res := a.Enricher.Enrich(ctx, enrich.TaskSummarizeExperience, enrich.Input{Description: e.Description})
			summaries = append(summaries, res)
			description = res.Display()
		}
		experience.Entries = append(experience.Entries, Entry{
			Heading: heading(3, e.Title),
			Paragraphs: []Paragraph{
				body(joinPipe(e.Company, e.Dates)),
				body(description),
			},
		})
	}
	doc.Sections = append(doc.Sections, experience)

	education := Section{ID: SectionEducation, Heading: heading(2, EducationHeading), Entries: []Entry{}}
	for _, e := range req.Education {
		education.Entries = append(education.Entries, Entry{
			Heading: heading(3, e.Degree),
			Paragraphs: []Paragraph{
				body(joinPipe(e.School, e.Dates)),
				body(e.Description),
			},
		})
	}
	doc.Sections = append(doc.Sections, education)

	projects := Section{ID: SectionProjects, Heading: heading(2, ProjectsHeading), Entries: []Entry{}}
	for _, p := range req.Projects {
		projects.Entries = append(projects.Entries, Entry{
			Heading:    heading(3, p.Title),
			Paragraphs: []Paragraph{body(p.Description)},
		})
	}
	doc.Sections = append(doc.Sections, projects)

	return doc, summaries
}

func (a *Assembler) summarize() bool {
	return a.Enricher != nil && !a.SkipSummaries
}

func headerSection(p *types.Profile) Section {
	return Section{
		ID:         SectionHeader,
		Heading:    heading(1, p.Name),
		Paragraphs: []Paragraph{body(ContactLine(p))},
		Entries:    []Entry{},
	}
}

func skillsSection(skills string) Section {
	s := Section{ID: SectionSkills, Heading: heading(2, SkillsHeading), Entries: []Entry{}}
	for _, skill := range SplitSkills(skills) {
		s.Paragraphs = append(s.Paragraphs, bullet(skill))
	}
	return s
}

// ContactLine formats the header's contact details, linking LinkedIn and GitHub in markdown style.
func ContactLine(p *types.Profile) string {
	return fmt.Sprintf("%s | %s | [LinkedIn](%s) | [GitHub](%s)", p.Email, p.Phone, p.LinkedIn, p.GitHub)
}

// SplitSkills splits a comma-separated skill list and trims each token.
// Empty tokens are kept, so "A,,B" yields three entries.
func SplitSkills(skills string) []string {
	parts := strings.Split(skills, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func joinPipe(left, right string) string {
	return left + " | " + right
}
