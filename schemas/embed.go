// Package schemas embeds the JSON Schemas for request bodies.
package schemas

import _ "embed"

// ResumeRequest is the schema for resume submissions.
//
//go:embed resume_request.schema.json
var ResumeRequest string

// EnrichmentInput is the schema for single enrichment requests.
//
//go:embed enrichment_input.schema.json
var EnrichmentInput string

// Files maps each schema file name to its content.
var Files = map[string]string{
	"resume_request.schema.json":   ResumeRequest,
	"enrichment_input.schema.json": EnrichmentInput,
}
