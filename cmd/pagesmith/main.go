package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pagesmith/internal/config"
)

var (
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pagesmith",
	Short: "pagesmith - content block composition and search orchestration",
	Long: `pagesmith assembles web pages out of discrete content blocks: narrative
text generated by an LLM, product listings driven by a live search index,
and semantic recommendation blocks, with per-location page variants derived
by placeholder substitution.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		zc := zap.NewProductionConfig()
		if cfg.Logging.Development {
			zc = zap.NewDevelopmentConfig()
		}
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else if cfg.Logging.Level != "" {
			lvl, perr := zapcore.ParseLevel(cfg.Logging.Level)
			if perr != nil {
				return fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, perr)
			}
			zc.Level = zap.NewAtomicLevelAt(lvl)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "pagesmith.yaml", "path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(variantCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(componentsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
