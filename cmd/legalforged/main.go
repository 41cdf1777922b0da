// Package main implements legalforged, the command-line entry point for the
// multi-tenant legal-document generation pipeline: it wires the policy
// gate, retrieval federator, agent runtime and graph executor together and
// exposes them as a handful of cobra subcommands (run, feedback, audit).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"legalforge/internal/config"
	"legalforge/internal/logging"
)

var (
	verbose    bool
	workspace  string
	configPath string
	apiKey     string
	timeout    time.Duration

	logger  *zap.Logger
	current *app
)

var rootCmd = &cobra.Command{
	Use:   "legalforged",
	Short: "legalforged drafts, reviews and answers questions over legal documents",
	Long: `legalforged is the CLI for the multi-tenant legal-document generation
pipeline: an analyser/researcher/drafter/critic/formatter agent chain,
gated by a tenant policy engine and a PII redaction layer, backed by a
federated semantic+lexical retrieval index.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logConfig := zap.NewProductionConfig()
		if verbose {
			logConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = logConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ws := workspace
		if ws == "" {
			ws, _ = os.Getwd()
		} else if abs, err := filepath.Abs(ws); err == nil {
			ws = abs
		}
		if err := logging.Initialize(ws); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}

		path := configPath
		if path == "" {
			path = filepath.Join(ws, "legalforge.yaml")
		}
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if apiKey != "" {
			cfg.LLM.APIKey = apiKey
		}

		current, err = buildApp(cfg, ws)
		if err != nil {
			return fmt.Errorf("starting legalforged: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil {
			current.close()
		}
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace directory (default: current directory)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to legalforge.yaml (default: <workspace>/legalforge.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "model API key (or set GENAI_API_KEY)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall command timeout")

	rootCmd.AddCommand(runCmd, feedbackCmd, auditCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
