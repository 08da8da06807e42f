// internal/proxy/cachekey_test.go
package proxy

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyForJSON(t *testing.T, body string) string {
	t.Helper()
	prompt, digest := ExtractStable([]byte(body), "application/json")
	return CacheKey("application/json", prompt, digest)
}

func multipartBody(t *testing.T, query, requestID string, pdf []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("pdf", "merged.pdf")
	require.NoError(t, err)
	_, err = part.Write(pdf)
	require.NoError(t, err)

	require.NoError(t, w.WriteField("query", query))
	require.NoError(t, w.WriteField("requestId", requestID))
	require.NoError(t, w.Close())

	return buf.Bytes(), w.FormDataContentType()
}

func TestCacheKey_JSONIgnoresRequestID(t *testing.T) {
	k1 := keyForJSON(t, `{"query": "ten algebra questions", "requestId": "aaa"}`)
	k2 := keyForJSON(t, `{"query": "ten algebra questions", "requestId": "bbb"}`)
	k3 := keyForJSON(t, `{"query": "different prompt", "requestId": "aaa"}`)

	assert.Equal(t, k1, k2, "requestId must not affect the key")
	assert.NotEqual(t, k1, k3)
}

func TestCacheKey_MultipartIgnoresBoundaryAndRequestID(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")

	b1, ct1 := multipartBody(t, "ten algebra questions", "req-aaa", pdf)
	b2, ct2 := multipartBody(t, "ten algebra questions", "req-bbb", pdf)
	require.NotEqual(t, ct1, ct2, "boundaries differ per submission")

	p1, d1 := ExtractStable(b1, ct1)
	p2, d2 := ExtractStable(b2, ct2)

	assert.Equal(t, "ten algebra questions", p1)
	assert.Equal(t, CacheKey(ct1, p1, d1), CacheKey(ct2, p2, d2))
}

func TestCacheKey_MultipartDifferentAttachmentDiffers(t *testing.T) {
	b1, ct1 := multipartBody(t, "same prompt", "req-1", []byte("%PDF doc one"))
	b2, ct2 := multipartBody(t, "same prompt", "req-2", []byte("%PDF doc two"))

	p1, d1 := ExtractStable(b1, ct1)
	p2, d2 := ExtractStable(b2, ct2)

	assert.NotEqual(t, CacheKey(ct1, p1, d1), CacheKey(ct2, p2, d2))
}

func TestCacheKey_ContentTypeParamsStripped(t *testing.T) {
	prompt, digest := ExtractStable([]byte(`{"query": "q"}`), "application/json")

	k1 := CacheKey("application/json", prompt, digest)
	k2 := CacheKey("application/json; charset=utf-8", prompt, digest)
	assert.Equal(t, k1, k2)
}

func TestExtractStable_MalformedJSONFallsBack(t *testing.T) {
	p1, d1 := ExtractStable([]byte("not json"), "application/json")
	p2, d2 := ExtractStable([]byte("not json either"), "application/json")

	assert.Empty(t, p1)
	assert.Empty(t, p2)
	assert.NotEqual(t, d1, d2, "whole-body digest still distinguishes bodies")
}
