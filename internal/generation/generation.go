// Package generation defines the text-generation collaborator consumed by
// the composition orchestrator, and a Gemini-backed implementation.
package generation

import (
	"context"
)

// Request is one generation call. Preface carries the already-generated text
// of all prior blocks in grid order; SectionContext names the section's
// ordinal position and, when available, the previous section for continuity.
type Request struct {
	Topic          string
	ComponentID    string
	Header         string
	Preface        string
	Content        string
	SectionContext string
	StarterSamples []string
}

// Result is the collaborator's response. Data is set when the model returned
// a structured list (bullet-like components).
type Result struct {
	Composition string
	Data        []string
}

// Generator produces block content from a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}
