// Package cli implements the retrievalcfg command tree.
package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/querylab/retrievalcfg/internal/logger"
)

var (
	// cfgPath is the explicit config file path (overrides RETRIEVAL_CONFIG_PATH).
	cfgPath string
	// logLevel overrides the log level.
	logLevel string
	// log is the process logger, built in the persistent pre-run.
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "retrievalcfg",
	Short: "Retrieval candidate-pipeline configuration and limits toolkit",
	Long: `retrievalcfg resolves the retrieval pipeline configuration document,
computes environment-overridable candidate-pool limits, validates the
configuration for internal consistency, and runs the hardening battery
against a retrieval pipeline.`,
	SilenceUsage: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		// .env is optional; missing file is fine
		_ = godotenv.Load()

		env := os.Getenv("ENV")
		if env == "" {
			env = "local"
		}
		l, err := logger.New(env, logLevel)
		if err != nil {
			return err
		}
		log = l
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute runs the command tree. Called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "",
		"config file path (overrides RETRIEVAL_CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level: debug, info, warn, error")
}
