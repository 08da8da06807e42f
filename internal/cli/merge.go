// internal/cli/merge.go
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"paperforge/internal/assembler"
	"paperforge/internal/cache"
)

var mergeOut string

var mergeCmd = &cobra.Command{
	Use:   "merge [pdf files...]",
	Short: "Merge chapter PDFs into a single document",
	Long: `Merges the given PDF files into one document, ordered by file name
with numeric segments compared by value (chapter2 before chapter10).
Corrupt or empty inputs fail the whole merge.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOut, "out", "o", "", "output file (defaults to the generated name)")
	rootCmd.AddCommand(mergeCmd)
}

// fileFetcher reads source bytes from disk, using the document ID as path.
var fileFetcher = assembler.FetcherFunc(func(_ context.Context, src assembler.SourceDocument) ([]byte, error) {
	return os.ReadFile(src.ID)
})

func newAssembler() *assembler.Assembler {
	return assembler.New(
		assembler.NewPDFEngine(),
		fileFetcher,
		cache.NewMemory(cfg.Assembler.CacheEntries),
		assembler.Config{
			MaxMergedBytes: cfg.Assembler.MaxMergedBytes,
			CacheTTL:       time.Duration(cfg.Assembler.CacheTTLMinutes) * time.Minute,
		},
		log,
	)
}

func sourcesFromPaths(paths []string) []assembler.SourceDocument {
	sources := make([]assembler.SourceDocument, 0, len(paths))
	for _, p := range paths {
		sources = append(sources, assembler.SourceDocument{
			ID:   p,
			Name: filepath.Base(p),
		})
	}
	return sources
}

func runMerge(cmd *cobra.Command, args []string) error {
	merged, err := newAssembler().Merge(cmd.Context(), sourcesFromPaths(args))
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	out := mergeOut
	if out == "" {
		out = merged.Filename
	}
	if err := os.WriteFile(out, merged.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	cmd.Printf("merged %d files, %d pages -> %s (%d bytes)\n",
		len(args), merged.PageCount, out, len(merged.Data))
	return nil
}
