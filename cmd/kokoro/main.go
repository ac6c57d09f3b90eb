package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"kokorolog/internal/config"
	"kokorolog/internal/emotion"
	"kokorolog/internal/llm"
	"kokorolog/internal/logging"
	"kokorolog/internal/store"
)

var (
	// Global flags
	cfgPath string
	verbose bool

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "kokoro",
	Short: "kokorolog - classroom emotion journaling backend",
	Long: `kokorolog collects short daily journal entries from students,
classifies each into six emotions (楽しい/悲しい/怒り/不安/しんどい/中立)
with a deterministic Japanese lexicon pipeline, blends repeated
same-day entries, and aggregates class-level reports for teachers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		if err := logging.Initialize(logging.Options{
			Dir:        cfg.Logging.Dir,
			Level:      cfg.Logging.Level,
			JSONFormat: cfg.Logging.Format == "json",
		}); err != nil {
			return fmt.Errorf("failed to initialize file logging: %w", err)
		}
		if err := logging.InitAudit(); err != nil {
			return fmt.Errorf("failed to initialize audit log: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAudit()
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// openStore opens the configured SQLite journal in the configured zone.
func openStore() (*store.JournalStore, error) {
	st, err := store.NewJournalStore(cfg.Store.DatabasePath, cfg.Location())
	if err != nil {
		return nil, fmt.Errorf("open journal store: %w", err)
	}
	return st, nil
}

// buildResolver assembles the classification pipeline from config:
// engine choice, alias overlay, optional external classifier.
func buildResolver(external emotion.External) *emotion.Resolver {
	p := cfg.EmotionParams()

	var classifier emotion.Classifier
	if cfg.Emotion.Engine == "legacy" {
		classifier = emotion.NewLegacyClassifier(p)
	} else {
		classifier = emotion.NewRuleClassifier(p, external)
	}

	// A missing or malformed alias overlay is non-fatal: log and keep
	// the built-in table.
	normalizer := emotion.NewNormalizer()
	if cfg.Emotion.AliasPath != "" {
		if data, err := os.ReadFile(cfg.Emotion.AliasPath); err != nil {
			logger.Warn("alias file unreadable, using built-in table", zap.Error(err))
		} else if n, err := emotion.NewNormalizerFromYAML(data); err != nil {
			logger.Warn("alias file unparsable, using built-in table", zap.Error(err))
		} else {
			normalizer = n
		}
	}

	return emotion.NewResolver(classifier, normalizer, cfg.Emotion.ManualOnly)
}

// buildLLM returns the configured provider client, or nil when
// disabled.
func buildLLM(ctx context.Context) (llm.Client, error) {
	if !cfg.LLMEnabled() {
		return nil, nil
	}
	return llm.New(ctx, llm.Options{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		Timeout:  cfg.GetLLMTimeout(),
	})
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "kokoro.yaml", "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
