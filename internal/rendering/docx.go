package rendering

import (
	"archive/zip"
	"bytes"
	"embed"
	"io/fs"
	"strings"
	"sync"

	"github.com/fumiama/go-docx"

	"github.com/jonathan/smart-resume/internal/document"
)

// templateFiles is the base .docx package. Its styles.xml defines every style
// the renderer applies, and numbering.xml backs the bullet list style.
//
//go:embed all:template
var templateFiles embed.FS

const templateRoot = "template"

// StyleBullet is the Word style ID applied to bullet paragraphs.
const StyleBullet = "ListBullet"

// HeadingStyle returns the Word style ID for a heading level.
func HeadingStyle(level int) string {
	switch {
	case level <= 1:
		return "Heading1"
	case level == 2:
		return "Heading2"
	default:
		return "Heading3"
	}
}

var (
	baseOnce    sync.Once
	baseArchive []byte
	baseErr     error
)

// baseDocx zips the embedded template once. Each render parses its own copy.
func baseDocx() ([]byte, error) {
	baseOnce.Do(func() {
		baseArchive, baseErr = packTemplate(templateFiles, templateRoot)
	})
	return baseArchive, baseErr
}

func packTemplate(fsys fs.FS, root string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	err := fs.WalkDir(fsys, root, func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		w, err := zw.Create(strings.TrimPrefix(name, root+"/"))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderDOCX serializes a document into a .docx archive.
func RenderDOCX(doc *document.Document) ([]byte, error) {
	if doc == nil {
		return nil, &RenderError{Message: "document is nil"}
	}

	base, err := baseDocx()
	if err != nil {
		return nil, &RenderError{Message: "failed to load docx template", Cause: err}
	}
	w, err := docx.Parse(bytes.NewReader(base), int64(len(base)))
	if err != nil {
		return nil, &RenderError{Message: "failed to open docx template", Cause: err}
	}

	for _, p := range doc.Paragraphs() {
		addParagraph(w, p)
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, &RenderError{Message: "failed to write docx archive", Cause: err}
	}
	return buf.Bytes(), nil
}

func addParagraph(w *docx.Docx, p document.Paragraph) {
	para := w.AddParagraph()
	switch p.Kind {
	case document.KindHeading:
		para.Style(HeadingStyle(p.Level))
	case document.KindBullet:
		para.Style(StyleBullet)
	}
	para.AddText(p.Text)
}
