package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/poi-xref/internal/config"
	"github.com/poi-xref/internal/debug"
	"github.com/poi-xref/internal/embeddings"
)

var (
	debugMode  bool
	configPath string
	logLevel   string
	logFormat  string

	logger zerolog.Logger
)

func main() {
	config.LoadEnv()

	rootCmd := &cobra.Command{
		Use:   "poimatch",
		Short: "Cross-provider POI matching",
		Long: `Matches point-of-interest records between providers (Google Places, Overture,
Foursquare, OpenStreetMap, SafeGraph) by location, name, address and category.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logLevel
			if debugMode {
				level = "debug"
			}
			logger = debug.Setup(level, logFormat, os.Stderr)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.GetEnv("POI_CONFIG", ""), "Match config JSON file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.GetEnv("LOG_LEVEL", "info"), "Log level")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", config.GetEnv("LOG_FORMAT", "console"), "Log format: console or json")

	rootCmd.AddCommand(createMatchCmd())
	rootCmd.AddCommand(createReportCmd())
	rootCmd.AddCommand(createTuneCmd())
	rootCmd.AddCommand(createNormalizeCmd())
	rootCmd.AddCommand(createScoreCmd())
	rootCmd.AddCommand(createServeCmd())
	rootCmd.AddCommand(createPingCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadMatchConfig reads --config and the environment.
func loadMatchConfig() (config.MatchConfig, error) {
	cfg, err := config.LoadMatchConfig(configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to load match config: %w", err)
	}
	return cfg, nil
}

// openEncoder builds the configured category encoder; nil when disabled.
func openEncoder(cfg config.EmbedderConfig) (embeddings.Encoder, error) {
	enc, err := embeddings.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open encoder: %w", err)
	}
	if enc != nil {
		logger.Info().Str("model", enc.ModelID()).Msg("encoder ready")
	}
	return enc, nil
}
