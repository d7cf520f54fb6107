// Package prompts provides a loader for externalized LLM prompt templates.
// Prompts are stored as JSON files and embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// EnrichmentFile holds the templates for every enrichment task.
const EnrichmentFile = "enrichment.json"

var (
	cache   = make(map[string]map[string]string)
	cacheMu sync.RWMutex
)

// Get retrieves a prompt by filename and key.
func Get(filename, key string) (string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	prompt, exists := prompts[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}

	return prompt, nil
}

// Format replaces {{.Key}} placeholders with values from data in a single
// left-to-right pass. Substituted values are never rescanned, so user text
// containing placeholder syntax is inserted literally. Unknown placeholders
// are left as they are.
func Format(template string, data map[string]string) string {
	var sb strings.Builder
	sb.Grow(len(template))

	rest := template
	for {
		start := strings.Index(rest, "{{.")
		if start < 0 {
			sb.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], "}}")
		if end < 0 {
			sb.WriteString(rest)
			break
		}
		end += start

		key := rest[start+3 : end]
		sb.WriteString(rest[:start])
		if value, ok := data[key]; ok {
			sb.WriteString(value)
		} else {
			sb.WriteString(rest[start : end+2])
		}
		rest = rest[end+2:]
	}

	return sb.String()
}

// Placeholders returns the distinct placeholder keys used by a template, in order of appearance.
func Placeholders(template string) []string {
	var keys []string
	seen := make(map[string]bool)

	rest := template
	for {
		start := strings.Index(rest, "{{.")
		if start < 0 {
			return keys
		}
		end := strings.Index(rest[start:], "}}")
		if end < 0 {
			return keys
		}
		key := rest[start+3 : start+end]
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
		rest = rest[start+end+2:]
	}
}

func loadFile(filename string) (map[string]string, error) {
	cacheMu.RLock()
	if prompts, exists := cache[filename]; exists {
		cacheMu.RUnlock()
		return prompts, nil
	}
	cacheMu.RUnlock()

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var prompts map[string]string
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	cacheMu.Lock()
	cache[filename] = prompts
	cacheMu.Unlock()

	return prompts, nil
}
