package rendering

import (
	"encoding/base64"
	"fmt"
	"html"
	"log"
	"strings"
	"unicode"
)

// DocxMIME is the media type of a .docx archive.
const DocxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// LinkText is the visible text of the download link.
const LinkText = "Download Resume (docx)"

// unsafeNameChars are characters that break a filename or an HTML attribute.
const unsafeNameChars = `<>:"/\|?*&'`

// ExportOptions controls how the candidate name reaches the filename and link.
type ExportOptions struct {
	// SanitizeNames replaces unsafe filename characters and HTML-escapes the
	// link attribute. When false the name is used verbatim.
	SanitizeNames bool
}

// Download is a serialized document packaged for an embedded download link.
type Download struct {
	Filename string `json:"filename"`
	Base64   string `json:"base64"`
	DataURI  string `json:"data_uri"`
	Link     string `json:"link"`
	Size     int    `json:"size"`
	// Unsafe is set when the name contained characters that were passed through unescaped.
	Unsafe bool `json:"unsafe,omitempty"`
}

// Export base64-encodes a .docx buffer and builds its filename, data URI and HTML link.
//
// By default the name is used raw in both the filename and the link's
// download attribute. When that name holds unsafe characters the Download is
// flagged Unsafe and a warning is logged.
func Export(name string, data []byte, opts ExportOptions) *Download {
	encoded := base64.StdEncoding.EncodeToString(data)
	dataURI := fmt.Sprintf("data:%s;base64,%s", DocxMIME, encoded)

	d := &Download{
		Base64:  encoded,
		DataURI: dataURI,
		Size:    len(data),
	}

	unsafe := UnsafeName(name)
	if opts.SanitizeNames {
		d.Filename = SanitizeFilename(name) + "_resume.docx"
		d.Link = fmt.Sprintf(`<a href="%s" download="%s">%s</a>`, dataURI, html.EscapeString(d.Filename), LinkText)
		return d
	}

	d.Filename = name + "_resume.docx"
	d.Link = fmt.Sprintf(`<a href="%s" download="%s">%s</a>`, dataURI, d.Filename, LinkText)
	if unsafe {
		d.Unsafe = true
		log.Printf("[export] WARNING: name %q contains characters unsafe for filenames or HTML; passed through unescaped (set SANITIZE_DOWNLOAD_NAMES=true to escape)", name)
	}
	return d
}

// DecodeBase64 reverses the encoding used by Export.
func DecodeBase64(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 document: %w", err)
	}
	return data, nil
}

// UnsafeName reports whether name holds characters that are unsafe in a
// filename or an HTML attribute.
func UnsafeName(name string) bool {
	for _, r := range name {
		if unicode.IsControl(r) || strings.ContainsRune(unsafeNameChars, r) {
			return true
		}
	}
	return false
}

// SanitizeFilename replaces unsafe characters with underscores.
// An empty result becomes "candidate".
func SanitizeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(unsafeNameChars, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if cleaned == "" {
		return "candidate"
	}
	return cleaned
}
