// internal/cli/generate.go
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"paperforge/internal/assembler"
	"paperforge/internal/common/aws"
	"paperforge/internal/dispatcher"
	"paperforge/internal/history"
	"paperforge/internal/notify"
	"paperforge/internal/orchestrator"
)

var (
	genPrompt  string
	genCount   int
	genAttach  []string
	genOut     string
	genEmailTo string
	genTitle   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an exam paper from a prompt and optional chapter PDFs",
	Long: `Sends the prompt to the configured upstream endpoints, splitting
requests for more than the batch limit into sequential batches. Attached
PDFs are merged first and sent with every batch.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genPrompt, "prompt", "p", "", "topic prompt for the paper (required)")
	generateCmd.Flags().IntVarP(&genCount, "count", "n", 10, "number of questions to generate")
	generateCmd.Flags().StringSliceVarP(&genAttach, "attach", "a", nil, "chapter PDFs to merge and attach")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "write the paper to this file instead of stdout")
	generateCmd.Flags().StringVar(&genEmailTo, "email-to", "", "email the finished paper to this address")
	generateCmd.Flags().StringVar(&genTitle, "title", "", "paper title used for the email subject")
	generateCmd.MarkFlagRequired("prompt")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	if genCount <= 0 {
		return errors.New("count must be positive")
	}

	ctx := cmd.Context()

	var attachment *assembler.MergedDocument
	if len(genAttach) > 0 {
		merged, err := newAssembler().Merge(ctx, sourcesFromPaths(genAttach))
		if err != nil {
			return fmt.Errorf("attachment merge failed: %w", err)
		}
		attachment = merged
		cmd.Printf("attached %d pages from %d files\n", merged.PageCount, len(genAttach))
	}

	candidates := dispatcher.CandidatesFromConfig(cfg.Upstream)
	orch := orchestrator.New(dispatcher.New(log), candidates, orchestrator.Config{
		MaxBatch:       cfg.Orchestrator.MaxBatch,
		Attempts:       cfg.Orchestrator.Attempts,
		InitialBackoff: time.Duration(cfg.Orchestrator.InitialBackoffMs) * time.Millisecond,
	}, log)

	result, err := orch.GenerateBatched(ctx, orchestrator.BatchSpec{
		TotalCount: genCount,
		MaxBatch:   cfg.Orchestrator.MaxBatch,
		Attachment: attachment,
		Prompt: func(n int) string {
			return fmt.Sprintf("%s\n\nGenerate exactly %d numbered questions.", genPrompt, n)
		},
		OnProgress: func(batchIndex int, _ string) {
			cmd.Printf("batch %d done\n", batchIndex+1)
		},
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if !result.CountMatchesRequested {
		cmd.Printf("warning: found %d questions, requested %d\n", result.ItemsFound, genCount)
	}

	if genOut != "" {
		if err := os.WriteFile(genOut, []byte(result.Text), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", genOut, err)
		}
		cmd.Printf("wrote paper to %s\n", genOut)
	} else {
		cmd.Println(result.Text)
	}

	if genEmailTo != "" {
		if err := emailPaper(cmd, result); err != nil {
			cmd.Printf("warning: email delivery failed: %v\n", err)
		}
	}
	return nil
}

func emailPaper(cmd *cobra.Command, result *orchestrator.AggregateResult) error {
	if !cfg.Notify.Enabled {
		return errors.New("notifications are disabled in config")
	}

	ctx := cmd.Context()
	mailer, err := aws.NewSESClient(ctx, cfg.Notify.Region)
	if err != nil {
		return err
	}

	return notify.New(mailer, cfg.Notify.Sender, log).SendPaper(ctx, genEmailTo, &history.Paper{
		Title:        genTitle,
		Prompt:       genPrompt,
		Content:      result.Text,
		ItemCount:    result.ItemsFound,
		CountMatches: result.CountMatchesRequested,
		CreatedAt:    time.Now(),
	})
}
