// internal/proxy/server.go
// Package proxy hosts the dispatcher contract at the server hop: it forwards
// generation requests to a fixed list of upstream targets with bounded
// attempts and strict per-attempt timeouts, and serves the last known-good
// response when every target fails.
package proxy

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"paperforge/internal/cache"
	"paperforge/internal/common/config"
	"paperforge/internal/common/logger"
	"paperforge/internal/common/metrics"
	"paperforge/internal/dispatcher"
)

// busyMessage is the single user-facing message all transport failures
// collapse to.
const busyMessage = "Server busy, please try again."

const (
	freshPrefix = "fresh:"
	stalePrefix = "stale:"
)

// Forwarder is the slice of the dispatcher the proxy needs; tests substitute
// a scripted fake.
type Forwarder interface {
	Forward(ctx context.Context, payload dispatcher.Payload, requestID string, cand dispatcher.EndpointCandidate) (*dispatcher.Result, error)
}

// GenerationRecorder receives per-request outcome metrics.
type GenerationRecorder interface {
	RecordGeneration(ctx context.Context, status string)
	RecordGenerationDuration(ctx context.Context, duration time.Duration, status string)
}

type Server struct {
	cfg    config.ProxyConfig
	fwd    Forwarder
	cache  cache.Cache
	logger logger.Logger
	obs    GenerationRecorder
}

func NewServer(cfg config.ProxyConfig, fwd Forwarder, respCache cache.Cache, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		cfg:    cfg,
		fwd:    fwd,
		cache:  respCache,
		logger: log.With(map[string]interface{}{"component": "proxy"}),
	}
}

// WithRecorder attaches an outcome recorder. Safe to skip in tests.
func (s *Server) WithRecorder(r GenerationRecorder) *Server {
	s.obs = r
	return s
}

func (s *Server) record(ctx context.Context, start time.Time, status string) {
	if s.obs == nil {
		return
	}
	s.obs.RecordGeneration(ctx, status)
	s.obs.RecordGenerationDuration(ctx, time.Since(start), status)
}

// Router builds the gin engine with permissive CORS on every route.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	r.POST("/api/proxy", s.handleProxy)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func (s *Server) handleProxy(c *gin.Context) {
	start := time.Now()
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, s.cfg.MaxBodyBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return
	}
	if int64(len(body)) > s.cfg.MaxBodyBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
		return
	}

	contentType := c.GetHeader("Content-Type")
	if isJSON(contentType) {
		if err := ValidateJSONBody(body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	prompt, digest := ExtractStable(body, contentType)
	key := CacheKey(contentType, prompt, digest)

	ctx := c.Request.Context()
	if cached, ok := s.cache.Get(ctx, freshPrefix+key); ok {
		metrics.ProxyCacheEvents.WithLabelValues("hit").Inc()
		s.record(ctx, start, "cache_hit")
		c.Header("X-Cache", "HIT")
		c.Data(http.StatusOK, "text/plain; charset=utf-8", cached)
		return
	}
	metrics.ProxyCacheEvents.WithLabelValues("miss").Inc()

	payload := dispatcher.Payload{Body: body, ContentType: contentType}
	attemptTimeout := time.Duration(s.cfg.AttemptTimeoutMs) * time.Millisecond

	var lastErr error
	for _, target := range s.cfg.Targets {
		for attempt := 0; attempt < s.cfg.Attempts; attempt++ {
			res, err := s.fwd.Forward(ctx, payload, uuid.NewString(), dispatcher.EndpointCandidate{
				URL:     target,
				Kind:    dispatcher.KindDirect,
				Timeout: attemptTimeout,
			})
			if err == nil {
				text := []byte(res.Text)
				s.cache.Set(ctx, freshPrefix+key, text, time.Duration(s.cfg.CacheTTLHours)*time.Hour)
				s.cache.Set(ctx, stalePrefix+key, text, time.Duration(s.cfg.StaleTTLHours)*time.Hour)
				metrics.ProxyCacheEvents.WithLabelValues("store").Inc()
				s.record(ctx, start, "success")
				c.Header("X-Cache", "MISS")
				c.Data(http.StatusOK, "text/plain; charset=utf-8", text)
				return
			}
			lastErr = err

			if ctx.Err() != nil {
				s.record(ctx, start, "canceled")
				c.JSON(http.StatusBadGateway, gin.H{"error": busyMessage})
				return
			}
		}
	}

	if stale, ok := s.cache.Get(ctx, stalePrefix+key); ok {
		metrics.ProxyCacheEvents.WithLabelValues("stale").Inc()
		s.logger.Warn("all targets failed, serving stale response", map[string]interface{}{
			"error": errString(lastErr),
		})
		s.record(ctx, start, "stale")
		c.Header("X-Cache", "STALE")
		c.Data(http.StatusOK, "text/plain; charset=utf-8", stale)
		return
	}

	s.logger.Error("all targets failed with no cached fallback", map[string]interface{}{
		"error": errString(lastErr),
	})
	s.record(ctx, start, "error")
	c.JSON(http.StatusBadGateway, gin.H{"error": busyMessage})
}

func isJSON(contentType string) bool {
	return baseContentType(contentType) == "application/json"
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
