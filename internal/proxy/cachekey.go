// internal/proxy/cachekey.go
package proxy

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"strings"
)

// CacheKey derives the response-cache key from a request's content type, its
// prompt and a digest of its stable body content. The requestId field and the
// multipart boundary change on every submission by design, so both are
// excluded: identical selections of prompt and attachment must hash
// identically for the cache to ever hit.
func CacheKey(contentType, prompt string, bodyDigest []byte) string {
	h := sha256.New()
	h.Write([]byte(baseContentType(contentType)))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	h.Write([]byte{0})
	h.Write(bodyDigest)
	return hex.EncodeToString(h.Sum(nil))
}

// ExtractStable pulls the prompt and a digest of the cache-relevant body
// content out of a request body. JSON bodies contribute the query string;
// multipart bodies contribute every part except requestId, in order.
func ExtractStable(body []byte, contentType string) (prompt string, digest []byte) {
	base := baseContentType(contentType)

	if strings.Contains(base, "json") {
		var payload struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(body, &payload); err == nil && payload.Query != "" {
			sum := sha256.Sum256([]byte(payload.Query))
			return payload.Query, sum[:]
		}
		sum := sha256.Sum256(body)
		return "", sum[:]
	}

	if strings.HasPrefix(base, "multipart/") {
		_, params, err := mime.ParseMediaType(contentType)
		if err == nil && params["boundary"] != "" {
			if d, p := digestMultipart(body, params["boundary"]); d != nil {
				return p, d
			}
		}
	}

	sum := sha256.Sum256(body)
	return "", sum[:]
}

// digestMultipart hashes form parts in order, skipping the requestId
// cache-buster. Returns nil on malformed bodies so the caller falls back to a
// whole-body digest.
func digestMultipart(body []byte, boundary string) (digest []byte, prompt string) {
	mr := multipart.NewReader(bytes.NewReader(body), boundary)
	h := sha256.New()

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ""
		}

		name := part.FormName()
		if name == "requestId" {
			continue
		}

		content, err := io.ReadAll(part)
		if err != nil {
			return nil, ""
		}
		if name == "query" {
			prompt = string(content)
		}

		h.Write([]byte(name))
		h.Write([]byte{0})
		h.Write(content)
		h.Write([]byte{0})
	}

	return h.Sum(nil), prompt
}

func baseContentType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		return strings.TrimSpace(contentType[:i])
	}
	return contentType
}
