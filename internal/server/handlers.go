package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonathan/smart-resume/internal/enrich"
	"github.com/jonathan/smart-resume/internal/ingestion"
	"github.com/jonathan/smart-resume/internal/pipeline"
	"github.com/jonathan/smart-resume/internal/rendering"
	"github.com/jonathan/smart-resume/internal/schemas"
	"github.com/jonathan/smart-resume/internal/server/middleware"
	"github.com/jonathan/smart-resume/internal/types"
)

// maxJSONBodyBytes bounds JSON request bodies.
const maxJSONBodyBytes = 1 << 20

// multipartSlack leaves room for multipart headers around an upload.
const multipartSlack = 64 << 10

// ErrorResponse is the body of every JSON error.
type ErrorResponse struct {
	Error string `json:"error"`
	// Fields lists per-field problems for validation failures.
	Fields any `json:"fields,omitempty"`
}

// TaskInfo describes one enrichment task for GET /enrichments.
type TaskInfo struct {
	Task  enrich.Task `json:"task"`
	Title string      `json:"title"`
}

// ExtractRequest is the JSON form of POST /job-descriptions/extract.
type ExtractRequest struct {
	URL  string `json:"url,omitempty"`
	Text string `json:"text,omitempty"`
}

// ExtractResponse carries an ingested job description.
type ExtractResponse struct {
	Text   string            `json:"text"`
	Source *ingestion.Source `json:"source"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"enrichment": s.enricher != nil,
	})
}

// handleListTasks lists the enrichment tasks in presentation order
func (s *Server) handleListTasks(w http.ResponseWriter, _ *http.Request) {
	tasks := enrich.AllTasks()
	out := make([]TaskInfo, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskInfo{Task: t, Title: t.Title()})
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// handleCreateResume runs a full generation and returns the result
func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeResumeRequest(w, r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	result, err := s.generator.Run(r.Context(), req, s.runOptions())
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleCreateResumeStream runs a full generation and streams progress via SSE
func (s *Server) handleCreateResumeStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeResumeRequest(w, r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	opts := s.runOptions()
	opts.OnProgress = func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent(eventStep, event); err != nil {
			log.Printf("[sse] failed to write %s event: %v", event.Step, err)
		}
	}

	result, err := s.generator.Run(r.Context(), req, opts)
	if err != nil {
		sse.WriteError(errorMessage(err))
		sse.WriteComplete("", "failed")
		return
	}

	if err := sse.WriteEvent(eventResult, result); err != nil {
		log.Printf("[sse] failed to write result for %s: %v", result.ID, err)
		return
	}
	sse.WriteComplete(result.ID, "completed")
}

// handleResumeDocx builds only the document and returns it as an attachment
func (s *Server) handleResumeDocx(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeResumeRequest(w, r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	opts := s.runOptions()
	opts.DocumentOnly = true
	result, err := s.generator.Run(r.Context(), req, opts)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	data, err := rendering.DecodeBase64(result.Download.Base64)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": result.Download.Filename})
	if disposition == "" {
		disposition = `attachment; filename="resume.docx"`
	}
	w.Header().Set("Content-Type", rendering.DocxMIME)
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Resume-ID", result.ID)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("Error writing document %s: %v", result.ID, err)
	}
}

// handleEnrichment runs a single enrichment task
func (s *Server) handleEnrichment(w http.ResponseWriter, r *http.Request) {
	task, err := enrich.ParseTask(r.PathValue("task"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if s.enricher == nil {
		s.handleError(w, r, &ErrUnavailable{Feature: "enrichment"})
		return
	}

	body, err := readBody(w, r, maxJSONBodyBytes)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("{}")
	}
	if err := schemas.ValidateEnrichmentInput(body); err != nil {
		s.handleError(w, r, err)
		return
	}

	var in enrich.Input
	if err := json.Unmarshal(body, &in); err != nil {
		s.handleError(w, r, &ErrValidation{Field: "(root)", Message: err.Error()})
		return
	}

	s.jsonResponse(w, http.StatusOK, s.enricher.Enrich(r.Context(), task, in))
}

// handleExtractJobDescription turns an uploaded file, a posting URL or pasted
// text into a cleaned job description
func (s *Server) handleExtractJobDescription(w http.ResponseWriter, r *http.Request) {
	var (
		text string
		src  *ingestion.Source
		err  error
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		text, src, err = s.extractFromForm(w, r)
	case "application/json":
		text, src, err = s.extractFromJSON(w, r)
	default:
		err = &ErrValidation{Field: "Content-Type", Message: "expected multipart/form-data or application/json"}
	}
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, ExtractResponse{Text: text, Source: src})
}

func (s *Server) extractFromForm(w http.ResponseWriter, r *http.Request) (string, *ingestion.Source, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.app.MaxUploadBytes+multipartSlack)
	if err := r.ParseMultipartForm(s.app.MaxUploadBytes); err != nil {
		return "", nil, err
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		if header.Size > s.app.MaxUploadBytes {
			return "", nil, &http.MaxBytesError{Limit: s.app.MaxUploadBytes}
		}
		data, err := io.ReadAll(file)
		if err != nil {
			return "", nil, err
		}
		return ingestion.FromFile(header.Filename, data)
	case !errors.Is(err, http.ErrMissingFile):
		return "", nil, err
	}

	return s.extract(r, ExtractRequest{URL: r.FormValue("url"), Text: r.FormValue("text")})
}

func (s *Server) extractFromJSON(w http.ResponseWriter, r *http.Request) (string, *ingestion.Source, error) {
	body, err := readBody(w, r, maxJSONBodyBytes)
	if err != nil {
		return "", nil, err
	}
	var req ExtractRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", nil, &ErrValidation{Field: "(root)", Message: err.Error()}
	}
	return s.extract(r, req)
}

func (s *Server) extract(r *http.Request, req ExtractRequest) (string, *ingestion.Source, error) {
	switch {
	case strings.TrimSpace(req.URL) != "":
		if s.jobs == nil {
			return "", nil, &ErrUnavailable{Feature: "job URL fetching"}
		}
		return s.jobs.Ingest(r.Context(), strings.TrimSpace(req.URL))
	case strings.TrimSpace(req.Text) != "":
		text, src := ingestion.FromText(req.Text)
		if text == "" {
			return "", nil, ingestion.ErrEmptyContent
		}
		return text, src, nil
	default:
		return "", nil, &ErrValidation{Field: "file", Message: "one of file, url or text is required"}
	}
}

// handleQR renders a QR code PNG for ?data= or for a LinkedIn value given as ?linkedin=
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	data := query.Get("data")
	if data == "" && query.Get("linkedin") != "" {
		data = rendering.ProfileURL(s.app.ProfileURLBase, query.Get("linkedin"))
	}
	if data == "" {
		s.handleError(w, r, &ErrValidation{Field: "data", Message: "is required"})
		return
	}

	modulePx := s.app.QRModulePixels
	if raw := query.Get("px"); raw != "" {
		px, err := strconv.Atoi(raw)
		if err != nil || px < 1 || px > 50 {
			s.handleError(w, r, &ErrValidation{Field: "px", Message: "must be an integer between 1 and 50"})
			return
		}
		modulePx = px
	}

	png, err := rendering.EncodeQR(data, modulePx)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		log.Printf("Error writing QR code: %v", err)
	}
}

// decodeResumeRequest validates the body against the resume request schema
// and decodes it. Field-level checks happen in the generator.
func (s *Server) decodeResumeRequest(w http.ResponseWriter, r *http.Request) (*types.ResumeRequest, error) {
	body, err := readBody(w, r, maxJSONBodyBytes)
	if err != nil {
		return nil, err
	}
	if err := schemas.ValidateResumeRequest(body); err != nil {
		return nil, err
	}

	var req types.ResumeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &ErrValidation{Field: "(root)", Message: err.Error()}
	}
	return &req, nil
}

func (s *Server) runOptions() pipeline.RunOptions {
	return pipeline.RunOptions{Verbose: s.app.Verbose}
}

// handleError writes err as JSON with the status HTTPStatus assigns it.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[server] %s %s id=%s failed: %v", r.Method, r.URL.Path, middleware.GetRequestID(r), err)
	}

	resp := ErrorResponse{Error: errorMessage(err)}
	var (
		schemaErr  *schemas.ValidationError
		requestErr *types.ValidationError
	)
	switch {
	case errors.As(err, &schemaErr):
		resp.Error = "request does not match schema"
		resp.Fields = schemaErr.Errors
	case errors.As(err, &requestErr):
		resp.Fields = requestErr.Fields
	}

	s.jsonResponse(w, status, resp)
}

func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
}
