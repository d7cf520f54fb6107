// Package ingestion turns job descriptions from pasted text, URLs or uploaded
// files into cleaned plain text.
package ingestion

import (
	"regexp"
	"strings"
)

var (
	innerSpace  = regexp.MustCompile(`[ \t\f\v]+`)
	blankStreak = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes line endings, collapses runs of spaces inside lines,
// keeps bullet and heading markers, and allows at most one blank line in a row.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, " ", " ")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := blankStreak.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}

	// Nested bullets keep their indentation.
	indent := ""
	if isBulletLine(trimmed) {
		indent = line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		indent = strings.ReplaceAll(indent, "\t", "  ")
	}
	return indent + innerSpace.ReplaceAllString(trimmed, " ")
}

func isBulletLine(trimmed string) bool {
	for _, marker := range []string{"- ", "* ", "• ", "· "} {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}
