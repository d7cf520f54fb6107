// Package document builds the in-memory resume document from a submission.
package document

import "strings"

// Kind is the role a paragraph plays in the rendered document.
type Kind string

// Paragraph kinds.
const (
	KindHeading Kind = "heading"
	KindBody    Kind = "body"
	KindBullet  Kind = "bullet"
)

// Paragraph is one line of document content.
type Paragraph struct {
	Kind  Kind   `json:"kind"`
	Level int    `json:"level,omitempty"` // 1..3 for headings
	Text  string `json:"text"`
}

// Entry is one repeated item (a job, a degree, a project) within a section.
type Entry struct {
	Heading    Paragraph   `json:"heading"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

// SectionID names a fixed document section.
type SectionID string

// Sections in document order.
const (
	SectionHeader     SectionID = "header"
	SectionSkills     SectionID = "skills"
	SectionExperience SectionID = "experience"
	SectionEducation  SectionID = "education"
	SectionProjects   SectionID = "projects"
)

// SectionOrder is the fixed order of sections in every document.
var SectionOrder = []SectionID{
	SectionHeader,
	SectionSkills,
	SectionExperience,
	SectionEducation,
	SectionProjects,
}

// Section is a heading followed by loose paragraphs and/or entries.
type Section struct {
	ID         SectionID   `json:"id"`
	Heading    Paragraph   `json:"heading"`
	Paragraphs []Paragraph `json:"paragraphs,omitempty"`
	Entries    []Entry     `json:"entries"`
}

// Document is an ordered list of sections. It lives for one request.
type Document struct {
	Sections []Section `json:"sections"`
}

// Section returns the section with the given id, or nil.
func (d *Document) Section(id SectionID) *Section {
	for i := range d.Sections {
		if d.Sections[i].ID == id {
			return &d.Sections[i]
		}
	}
	return nil
}

// Paragraphs flattens the document into render order.
func (d *Document) Paragraphs() []Paragraph {
	var out []Paragraph
	for _, s := range d.Sections {
		out = append(out, s.Heading)
		out = append(out, s.Paragraphs...)
		for _, e := range s.Entries {
			out = append(out, e.Heading)
			out = append(out, e.Paragraphs...)
		}
	}
	return out
}

// PlainText joins every paragraph's text, each followed by a newline.
func (d *Document) PlainText() string {
	var sb strings.Builder
	for _, p := range d.Paragraphs() {
		sb.WriteString(p.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

func heading(level int, text string) Paragraph {
	return Paragraph{Kind: KindHeading, Level: level, Text: text}
}

func body(text string) Paragraph {
	return Paragraph{Kind: KindBody, Text: text}
}

func bullet(text string) Paragraph {
	return Paragraph{Kind: KindBullet, Text: text}
}
