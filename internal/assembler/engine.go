// internal/assembler/engine.go
package assembler

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Engine abstracts the PDF operations the assembler needs. The production
// engine is pdfcpu; tests substitute a stub so they do not depend on real PDF
// fixtures.
type Engine interface {
	// PageCount parses data as a PDF and returns its page count.
	PageCount(data []byte) (int, error)
	// Merge concatenates the given documents, pages in input order, into one.
	Merge(docs [][]byte) ([]byte, error)
}

type pdfcpuEngine struct {
	conf *model.Configuration
}

// NewPDFEngine returns the pdfcpu-backed engine. Validation is relaxed:
// chapter PDFs in the wild are frequently produced by sloppy generators.
func NewPDFEngine() Engine {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &pdfcpuEngine{conf: conf}
}

func (e *pdfcpuEngine) PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), e.conf)
	if err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	return n, nil
}

func (e *pdfcpuEngine) Merge(docs [][]byte) ([]byte, error) {
	readers := make([]io.ReadSeeker, 0, len(docs))
	for _, d := range docs {
		readers = append(readers, bytes.NewReader(d))
	}

	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, e.conf); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	return out.Bytes(), nil
}
