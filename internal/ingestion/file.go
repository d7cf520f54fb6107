package ingestion

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fumiama/go-docx"
	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

// Upload formats.
const (
	FormatText = "text"
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
)

// DetectFormat picks a parser by extension, falling back to content sniffing.
func DetectFormat(filename string, data []byte) (format, mimeType string, err error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, mimePDF, nil
	case ".docx":
		return FormatDOCX, mimeDOCX, nil
	case ".txt", ".md", ".text":
		return FormatText, mimeText, nil
	}

	mt := mimetype.Detect(data)
	switch {
	case mt.Is(mimePDF):
		return FormatPDF, mt.String(), nil
	case mt.Is(mimeDOCX):
		return FormatDOCX, mt.String(), nil
	case strings.HasPrefix(mt.String(), mimeText):
		return FormatText, mt.String(), nil
	}
	return "", mt.String(), fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, filename, mt.String())
}

// FromFile extracts and cleans the text of an uploaded job description.
func FromFile(filename string, data []byte) (string, *Source, error) {
	format, mimeType, err := DetectFormat(filename, data)
	if err != nil {
		return "", nil, err
	}

	var raw string
	switch format {
	case FormatPDF:
		raw, err = pdfText(data)
	case FormatDOCX:
		raw, err = docxText(data)
	default:
		if !utf8.Valid(data) {
			err = fmt.Errorf("%w: %s is not valid UTF-8", ErrUnsupportedFormat, filename)
		}
		raw = string(data)
	}
	if err != nil {
		return "", nil, err
	}

	cleaned := CleanText(raw)
	if cleaned == "" {
		return "", nil, fmt.Errorf("%w: %s", ErrEmptyContent, filename)
	}

	src := newSource(SourceFile, cleaned)
	src.Filename = filename
	src.MIMEType = mimeType
	return cleaned, src, nil
}

func pdfText(data []byte) (text string, err error) {
	// The PDF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: malformed PDF: %v", ErrContentExtractionFailed, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, perr := page.GetPlainText(nil)
		if perr != nil {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(pageText)
	}
	return buf.String(), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	var lines []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		var line strings.Builder
		for _, child := range para.Children {
			run, ok := child.(*docx.Run)
			if !ok {
				continue
			}
			for _, rc := range run.Children {
				if t, ok := rc.(*docx.Text); ok {
					line.WriteString(t.Text)
				}
			}
		}
		if line.Len() > 0 {
			lines = append(lines, line.String())
		}
	}
	return strings.Join(lines, "\n"), nil
}
