// internal/dispatcher/models.go
package dispatcher

import (
	"time"

	"paperforge/internal/assembler"
	"paperforge/internal/common/config"
)

// Kind distinguishes the direct upstream API from same-origin proxy fallbacks.
type Kind string

const (
	KindDirect Kind = "direct"
	KindProxy  Kind = "proxy"
)

// EndpointCandidate is one URL the dispatcher may try, in priority order.
// Proxy candidates get a longer budget because they retry the upstream
// themselves.
type EndpointCandidate struct {
	URL     string
	Kind    Kind
	Timeout time.Duration
}

// GenerationRequest is one question-generation call: a prompt, an optional
// merged PDF attachment, and the number of items the prompt asks for.
type GenerationRequest struct {
	Prompt            string
	Attachment        *assembler.MergedDocument
	ExpectedItemCount int
}

// Result is the normalized successful outcome. Callers never see the
// transport format: JSON field probing and plain-text bodies collapse here.
type Result struct {
	Text        string
	ContentType string
}

// Payload is a fully built outbound request body. The proxy service forwards
// client payloads through the same dispatch path without rebuilding them.
type Payload struct {
	Body        []byte
	ContentType string
}

// CandidatesFromConfig maps the configured endpoint list into candidates.
func CandidatesFromConfig(cfg config.UpstreamConfig) []EndpointCandidate {
	candidates := make([]EndpointCandidate, 0, len(cfg.Candidates))
	for _, c := range cfg.Candidates {
		candidates = append(candidates, EndpointCandidate{
			URL:     c.URL,
			Kind:    Kind(c.Kind),
			Timeout: time.Duration(c.TimeoutMs) * time.Millisecond,
		})
	}
	return candidates
}
