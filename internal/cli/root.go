// internal/cli/root.go
// Package cli implements the examgen command line tool: merge source PDFs
// and generate exam papers against the configured upstream endpoints.
package cli

import (
	"github.com/spf13/cobra"

	"paperforge/internal/common/config"
	"paperforge/internal/common/logger"
)

var version = "dev"

var (
	cfg *config.Config
	log logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "examgen",
	Short: "Generate exam papers from merged chapter PDFs",
	Long: `examgen merges selected chapter PDFs into a single document and
sends generation requests to the configured upstream endpoints, batching
large requests and retrying failed batches.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		log = logger.NewZapAdapter(logger.New(cfg.Logging.Level, cfg.Logging.Format))
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
