package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/smart-resume/internal/config"
	"github.com/jonathan/smart-resume/internal/enrich"
	"github.com/jonathan/smart-resume/internal/schemas"
	"github.com/jonathan/smart-resume/internal/types"
)

// withoutAPIKey keeps tests offline even when .env holds a credential.
func withoutAPIKey(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	return cmd, &buf
}

const validSubmission = `{
  "name": "Ada Lovelace",
  "email": "ada@example.com",
  "linkedin": "ada-lovelace",
  "skills": "Go, SQL",
  "experience": [
    {"title": "Engineer", "company": "Analytical Engines", "dates": "1842", "description": "Wrote the first program."}
  ],
  "education": [
    {"degree": "Mathematics", "school": "Home", "dates": "1830"}
  ],
  "job_description": "Senior Go engineer"
}`

func TestLoadConfig_FileOverEnvironment(t *testing.T) {
	withoutAPIKey(t)
	t.Setenv("QR_MODULE_PX", "4")
	t.Setenv("PORT", "9000")
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{"qr_module_pixels": 7, "sanitize_download_names": true}`)

	cfg, err := loadConfig(path, true)

	require.NoError(t, err)
	assert.Equal(t, 7, cfg.QRModulePixels)
	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.SanitizeDownloadNames)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, config.DefaultModel, cfg.Model)
}

func TestLoadConfig_Errors(t *testing.T) {
	withoutAPIKey(t)
	dir := t.TempDir()

	_, err := loadConfig(filepath.Join(dir, "missing.json"), false)
	assert.Error(t, err)

	_, err = loadConfig(writeFile(t, dir, "bad.json", "{"), false)
	assert.Error(t, err)

	_, err = loadConfig(writeFile(t, dir, "range.json", `{"max_concurrency": -2}`), false)
	assert.Error(t, err)
}

func TestNewGenerator_WithoutAPIKey(t *testing.T) {
	withoutAPIKey(t)
	cfg := config.Default()

	gen, closeFn, err := newGenerator(t.Context(), &cfg)

	require.NoError(t, err)
	defer closeFn()
	assert.Nil(t, gen.Enricher)
	assert.NotNil(t, gen.Jobs)
	assert.NotNil(t, gen.Profiles)
}

func TestNewEnricher_MissingAPIKey(t *testing.T) {
	cfg := config.Default()

	_, closeFn, err := newEnricher(t.Context(), &cfg)

	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
	assert.NotNil(t, closeFn)
}

func TestRunGenerate_WithoutAPIKey(t *testing.T) {
	withoutAPIKey(t)
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	generateInput = writeFile(t, dir, "request.json", validSubmission)
	generateOutDir = outDir
	generateConfigPath = ""
	generateDocumentOnly = false
	generateVerbose = true
	cmd, out := testCommand()

	require.NoError(t, runGenerate(cmd, nil))

	docx, err := os.ReadFile(filepath.Join(outDir, "Ada Lovelace_resume.docx"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(docx, []byte("PK")))

	png, err := os.ReadFile(filepath.Join(outDir, "profile_qr.png"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	raw, err := os.ReadFile(filepath.Join(outDir, "result.json"))
	require.NoError(t, err)
	var result map[string]any
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.NotEmpty(t, result["id"])
	assert.Equal(t, "https://linkedin.com/in/ada-lovelace", result["qr"].(map[string]any)["url"])

	output := out.String()
	assert.Contains(t, output, "→ [validate_input]")
	assert.Contains(t, output, "RESUME DOCUMENT")
	assert.Contains(t, output, "DOCX EXPORT")
	assert.Contains(t, output, "Wrote "+filepath.Join(outDir, "result.json"))
}

func TestRunGenerate_DocumentOnlySanitizesFilename(t *testing.T) {
	withoutAPIKey(t)
	dir := t.TempDir()
	submission := strings.Replace(validSubmission, `"Ada Lovelace"`, `"Ada/../Lovelace"`, 1)

	generateInput = writeFile(t, dir, "request.json", submission)
	generateOutDir = dir
	generateConfigPath = ""
	generateDocumentOnly = true
	generateVerbose = false
	cmd, _ := testCommand()

	require.NoError(t, runGenerate(cmd, nil))

	_, err := os.Stat(filepath.Join(dir, "Ada_.._Lovelace_resume.docx"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "profile_qr.png"))
	assert.True(t, os.IsNotExist(err), "document-only runs render no QR code")
}

func TestRunGenerate_MissingRequiredFields(t *testing.T) {
	withoutAPIKey(t)
	dir := t.TempDir()

	generateInput = writeFile(t, dir, "request.json", `{"name": "Ada"}`)
	generateOutDir = dir
	generateConfigPath = ""
	generateDocumentOnly = false
	generateVerbose = false
	cmd, _ := testCommand()

	err := runGenerate(cmd, nil)

	require.Error(t, err)
	assert.Equal(t, types.RequiredFieldsMessage, err.Error())
}

func TestRunGenerate_SchemaViolation(t *testing.T) {
	withoutAPIKey(t)
	dir := t.TempDir()

	generateInput = writeFile(t, dir, "request.json", `{"name": "Ada", "age": 36}`)
	generateOutDir = dir
	generateConfigPath = ""
	cmd, _ := testCommand()

	err := runGenerate(cmd, nil)

	var verr *schemas.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.NotEmpty(t, verr.Errors)
}

func TestReadEnrichmentInput(t *testing.T) {
	in, err := readEnrichmentInput(strings.NewReader(`{"job_description": "Go", "name": "Ada"}`), "-")
	require.NoError(t, err)
	assert.Equal(t, "Go", in.JobDescription)
	assert.Equal(t, "Ada", in.Name)

	_, err = readEnrichmentInput(strings.NewReader(`{"jd": "Go"}`), "-")
	assert.Error(t, err)

	dir := t.TempDir()
	in, err = readEnrichmentInput(nil, writeFile(t, dir, "in.json", `{"description": "Built things"}`))
	require.NoError(t, err)
	assert.Equal(t, "Built things", in.Description)

	_, err = readEnrichmentInput(nil, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestPrintEnrichment(t *testing.T) {
	var buf bytes.Buffer
	ok := enrich.Result{Task: enrich.TaskGenerateCoverLetter, Text: "Dear Hiring Manager,"}

	require.NoError(t, printEnrichment(&buf, ok, false))
	assert.Contains(t, buf.String(), "Dear Hiring Manager,")

	buf.Reset()
	require.NoError(t, printEnrichment(&buf, ok, true))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Dear Hiring Manager,", decoded["display"])

	buf.Reset()
	failed := enrich.Result{Task: enrich.TaskExtractSkills, Err: errors.New("quota exceeded")}
	err := printEnrichment(&buf, failed, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract-skills")
	assert.Contains(t, buf.String(), "quota exceeded")
}

func TestRunEnrich_Errors(t *testing.T) {
	withoutAPIKey(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "in.json", `{"job_description": "Go"}`)
	cmd, _ := testCommand()

	enrichTask = "write-novel"
	enrichInput = input
	enrichConfigPath = ""
	var taskErr *enrich.InvalidTaskError
	assert.True(t, errors.As(runEnrich(cmd, nil), &taskErr))

	enrichTask = string(enrich.TaskExtractQualifications)
	assert.ErrorIs(t, runEnrich(cmd, nil), config.ErrMissingAPIKey)
}

func TestRunQR(t *testing.T) {
	withoutAPIKey(t)
	dir := t.TempDir()

	qrData = "https://example.com/ada"
	qrLinkedIn = ""
	qrOut = filepath.Join(dir, "nested", "qr.png")
	qrConfigPath = ""
	qrModulePx = 3
	cmd, out := testCommand()

	require.NoError(t, runQR(cmd, nil))

	png, err := os.ReadFile(qrOut)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
	assert.Contains(t, out.String(), "https://example.com/ada")
}

func TestRunQR_LinkedInHandle(t *testing.T) {
	withoutAPIKey(t)
	t.Setenv("PROFILE_URL_BASE", "https://profiles.example.com/")
	dir := t.TempDir()

	qrData = ""
	qrLinkedIn = "ada"
	qrOut = filepath.Join(dir, "qr.png")
	qrConfigPath = ""
	qrModulePx = 0
	cmd, out := testCommand()

	require.NoError(t, runQR(cmd, nil))
	assert.Contains(t, out.String(), "https://profiles.example.com/ada")
}

func TestRunQR_TooLong(t *testing.T) {
	withoutAPIKey(t)

	qrData = strings.Repeat("x", 3000)
	qrLinkedIn = ""
	qrOut = filepath.Join(t.TempDir(), "qr.png")
	qrConfigPath = ""
	qrModulePx = 0
	cmd, _ := testCommand()

	assert.Error(t, runQR(cmd, nil))
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "generate", "enrich", "qr"} {
		assert.True(t, names[want], "missing %s command", want)
	}
}
