// internal/dispatcher/dispatcher.go
package dispatcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "paperforge/internal/common/errors"
	commonhttp "paperforge/internal/common/http"
	"paperforge/internal/common/logger"
	"paperforge/internal/common/metrics"
)

// Dispatcher delivers generation requests to an ordered list of candidate
// endpoints. Each candidate gets exactly one attempt under its own timeout;
// retries happen across candidates, never within one Dispatch call.
type Dispatcher struct {
	client *commonhttp.Client
	logger logger.Logger
	newID  func() string
}

func New(log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		// No client-level timeout; per-candidate budgets are enforced via
		// derived contexts.
		client: commonhttp.NewClient(0),
		logger: log.With(map[string]interface{}{"component": "dispatcher"}),
		newID:  uuid.NewString,
	}
}

// Dispatch tries each candidate in order and returns the first normalized
// success. Every failure is a typed StandardError; nothing panics or escapes
// raw. When all candidates fail the outcome is a NETWORK_ERROR carrying the
// last observed reason.
func (d *Dispatcher) Dispatch(ctx context.Context, req GenerationRequest, candidates []EndpointCandidate) (*Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, apperrors.NewInvalidRequestError("prompt is empty")
	}
	if len(candidates) == 0 {
		return nil, apperrors.NewInvalidRequestError("no candidate endpoints configured")
	}

	var lastErr error
	for _, cand := range candidates {
		requestID := d.newID()
		payload, err := BuildPayload(req, requestID)
		if err != nil {
			return nil, apperrors.NewInvalidRequestError(err.Error())
		}

		res, err := d.Forward(ctx, *payload, requestID, cand)
		if err == nil {
			return res, nil
		}
		lastErr = err

		d.logger.Warn("candidate failed, falling through", map[string]interface{}{
			"endpoint": cand.URL,
			"kind":     string(cand.Kind),
			"code":     string(apperrors.CodeOf(err)),
			"error":    err.Error(),
		})

		// The caller is gone; later candidates would just burn upstream quota.
		if ctx.Err() != nil {
			break
		}
	}

	return nil, apperrors.NewNetworkError("all candidates exhausted", lastErr)
}

// Forward performs a single delivery attempt of an already-built payload
// against one candidate. The proxy service shares this path, so the
// client-side and server-side hops keep identical semantics.
func (d *Dispatcher) Forward(ctx context.Context, payload Payload, requestID string, cand EndpointCandidate) (*Result, error) {
	target, err := withRequestID(cand.URL, requestID)
	if err != nil {
		return nil, apperrors.NewInvalidRequestError(fmt.Sprintf("bad endpoint url %q: %v", cand.URL, err))
	}

	httpReq, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(payload.Body))
	if err != nil {
		return nil, apperrors.NewNetworkError(cand.URL, err)
	}
	httpReq.Header.Set("Content-Type", payload.ContentType)

	start := time.Now()
	resp, err := d.client.DoWithTimeout(ctx, httpReq, cand.Timeout)
	metrics.DispatchDuration.WithLabelValues(string(cand.Kind)).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.DispatchAttempts.WithLabelValues(string(cand.Kind), "timeout").Inc()
			return nil, apperrors.NewTimeoutError(cand.URL)
		}
		metrics.DispatchAttempts.WithLabelValues(string(cand.Kind), "network_error").Inc()
		return nil, apperrors.NewNetworkError(cand.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		metrics.DispatchAttempts.WithLabelValues(string(cand.Kind), "http_error").Inc()
		return nil, apperrors.NewHTTPError(cand.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.DispatchAttempts.WithLabelValues(string(cand.Kind), "network_error").Inc()
		return nil, apperrors.NewNetworkError(cand.URL, err)
	}

	contentType := resp.Header.Get("Content-Type")
	text := Normalize(body, contentType)
	if strings.TrimSpace(text) == "" {
		metrics.DispatchAttempts.WithLabelValues(string(cand.Kind), "upstream_empty").Inc()
		return nil, apperrors.NewUpstreamEmptyError(cand.URL)
	}

	metrics.DispatchAttempts.WithLabelValues(string(cand.Kind), "success").Inc()
	return &Result{Text: text, ContentType: contentType}, nil
}

// withRequestID appends the requestId cache-buster to the endpoint URL.
func withRequestID(endpoint, requestID string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("requestId", requestID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
