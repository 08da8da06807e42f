// internal/assembler/assembler.go
package assembler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"paperforge/internal/cache"
	apperrors "paperforge/internal/common/errors"
	"paperforge/internal/common/logger"
	"paperforge/internal/common/metrics"
)

const pdfMagic = "%PDF"

// Config carries the assembler limits. Zero values fall back to the documented
// defaults (15 MB cap, 30 minute byte-cache TTL).
type Config struct {
	MaxMergedBytes int64
	CacheTTL       time.Duration
}

// Assembler merges ordered sets of source PDFs into a single document.
// Validated source bytes are cached by source identity so repeated merges in
// one session do not re-fetch.
type Assembler struct {
	engine    Engine
	fetcher   Fetcher
	byteCache cache.Cache
	cfg       Config
	logger    logger.Logger
	now       func() time.Time
}

func New(engine Engine, fetcher Fetcher, byteCache cache.Cache, cfg Config, log logger.Logger) *Assembler {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MaxMergedBytes <= 0 {
		cfg.MaxMergedBytes = 15 << 20
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Minute
	}
	return &Assembler{
		engine:    engine,
		fetcher:   fetcher,
		byteCache: byteCache,
		cfg:       cfg,
		logger:    log.With(map[string]interface{}{"component": "assembler"}),
		now:       time.Now,
	}
}

// Merge validates every source, then concatenates their pages in natural name
// order. The operation is atomic: one bad source fails the whole merge and no
// partial document is returned.
func (a *Assembler) Merge(ctx context.Context, sources []SourceDocument) (*MergedDocument, error) {
	if len(sources) == 0 {
		metrics.MergesTotal.WithLabelValues("empty").Inc()
		return nil, apperrors.NewEmptyMergeResultError()
	}

	ordered := sortByName(sources)

	buffers := make([][]byte, 0, len(ordered))
	totalPages := 0
	for _, src := range ordered {
		data, err := a.sourceBytes(ctx, src)
		if err != nil {
			metrics.MergesTotal.WithLabelValues("fetch_failed").Inc()
			return nil, err
		}

		pages, verr := a.validate(src.Name, data)
		if verr != nil {
			metrics.MergesTotal.WithLabelValues("invalid").Inc()
			return nil, verr
		}

		buffers = append(buffers, data)
		totalPages += pages
	}

	if totalPages == 0 {
		metrics.MergesTotal.WithLabelValues("empty").Inc()
		return nil, apperrors.NewEmptyMergeResultError()
	}

	merged, err := a.engine.Merge(buffers)
	if err != nil {
		metrics.MergesTotal.WithLabelValues("merge_failed").Inc()
		return nil, apperrors.NewInvalidDocumentError("merged output", err.Error())
	}

	if int64(len(merged)) > a.cfg.MaxMergedBytes {
		metrics.MergesTotal.WithLabelValues("oversized").Inc()
		return nil, apperrors.NewOversizedResultError(int64(len(merged)), a.cfg.MaxMergedBytes)
	}

	result := &MergedDocument{
		Data:      merged,
		PageCount: totalPages,
		Filename:  fmt.Sprintf("paper-sources-%s.pdf", a.now().Format("20060102-150405")),
	}

	a.logger.Info("merge completed", map[string]interface{}{
		"sources": len(ordered),
		"pages":   totalPages,
		"bytes":   len(merged),
	})
	metrics.MergesTotal.WithLabelValues("success").Inc()

	return result, nil
}

// sourceBytes returns the document bytes, preferring inline data, then the
// session byte cache, then the fetcher.
func (a *Assembler) sourceBytes(ctx context.Context, src SourceDocument) ([]byte, error) {
	if len(src.Data) > 0 {
		return src.Data, nil
	}

	if a.byteCache != nil && src.ID != "" {
		if data, ok := a.byteCache.Get(ctx, src.ID); ok {
			return data, nil
		}
	}

	if a.fetcher == nil {
		return nil, apperrors.NewSourceFetchFailedError(src.Name, fmt.Errorf("no fetcher configured"))
	}

	data, err := a.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, apperrors.NewSourceFetchFailedError(src.Name, err)
	}

	if a.byteCache != nil && src.ID != "" {
		a.byteCache.Set(ctx, src.ID, data, a.cfg.CacheTTL)
	}
	return data, nil
}

func (a *Assembler) validate(name string, data []byte) (int, error) {
	if len(data) == 0 {
		return 0, apperrors.NewInvalidDocumentError(name, "empty byte buffer")
	}
	if !strings.HasPrefix(string(data[:min(len(data), len(pdfMagic))]), pdfMagic) {
		return 0, apperrors.NewInvalidDocumentError(name, "missing %PDF header")
	}

	pages, err := a.engine.PageCount(data)
	if err != nil {
		return 0, apperrors.NewInvalidDocumentError(name, err.Error())
	}
	return pages, nil
}
