// internal/proxy/schema.go
package proxy

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// requestSchema guards JSON proxy bodies before any upstream call is spent on
// them. Multipart bodies are validated upstream; their shape is opaque here.
const requestSchema = `{
	"type": "object",
	"required": ["query"],
	"properties": {
		"query": {"type": "string", "minLength": 1},
		"requestId": {"type": "string"}
	}
}`

var schemaLoader = gojsonschema.NewStringLoader(requestSchema)

// ValidateJSONBody checks body against the request schema and returns a
// caller-facing message on failure.
func ValidateJSONBody(body []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("request body is not valid JSON")
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("invalid request: %s", strings.Join(msgs, "; "))
}
