// internal/dispatcher/normalize.go
package dispatcher

import (
	"encoding/json"
	"strings"
)

// responseFields is the ordered list of JSON field names probed for the
// generated text. The upstream has shipped all of these at different times;
// the order is a contract, not an accident.
var responseFields = []string{"questions", "result", "message"}

// Normalize extracts the generated text from an upstream response body. JSON
// bodies are probed for a bare string payload first, then the known field
// names in priority order; anything else passes through as plain text.
func Normalize(body []byte, contentType string) string {
	if !strings.Contains(contentType, "json") {
		return string(body)
	}

	var direct string
	if err := json.Unmarshal(body, &direct); err == nil {
		return direct
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err == nil {
		for _, field := range responseFields {
			raw, ok := obj[field]
			if !ok {
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && s != "" {
				return s
			}
		}
	}

	return string(body)
}
