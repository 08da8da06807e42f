// internal/dispatcher/payload.go
package dispatcher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
)

// BuildPayload renders the outbound body for one attempt. With an attachment
// the upstream expects a multipart form (`pdf` file field plus `query` text);
// without one a plain JSON body. The requestId rides along in both shapes to
// defeat upstream and intermediate caching.
func BuildPayload(req GenerationRequest, requestID string) (*Payload, error) {
	if req.Attachment == nil {
		body, err := json.Marshal(map[string]string{
			"query":     req.Prompt,
			"requestId": requestID,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal json payload: %w", err)
		}
		return &Payload{Body: body, ContentType: "application/json"}, nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("pdf", req.Attachment.Filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(req.Attachment.Data); err != nil {
		return nil, fmt.Errorf("write attachment: %w", err)
	}

	if err := w.WriteField("query", req.Prompt); err != nil {
		return nil, fmt.Errorf("write query field: %w", err)
	}
	if err := w.WriteField("requestId", requestID); err != nil {
		return nil, fmt.Errorf("write requestId field: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	return &Payload{Body: buf.Bytes(), ContentType: w.FormDataContentType()}, nil
}
