package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/poi-xref/internal/config"
	"github.com/poi-xref/internal/export"
	"github.com/poi-xref/internal/match"
)

// matchFlags override MatchConfig fields when set.
type matchFlags struct {
	k          int
	maxDist    float64
	threshold  float64
	projection string
	embedder   string
	workers    int
}

func (f *matchFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVar(&f.k, "k", 0, "Nearest neighbours per reference POI (default from config)")
	fl.Float64Var(&f.maxDist, "max-dist", -1, "Search radius in meters (default from config)")
	fl.Float64Var(&f.threshold, "threshold", -1, "Name score needed to accept a match (default from config)")
	fl.StringVar(&f.projection, "projection", "", "Distance projection: local, epsg3857 or planar")
	fl.StringVar(&f.embedder, "embedder", "", "Category encoder: ort, hash or none")
	fl.IntVar(&f.workers, "workers", 0, "Parallel workers (default NumCPU)")
}

func (f *matchFlags) apply(cfg *config.MatchConfig) error {
	if f.k > 0 {
		cfg.K = f.k
	}
	if f.maxDist >= 0 {
		cfg.MaxDistance = f.maxDist
	}
	if f.threshold >= 0 {
		cfg.NameThreshold = f.threshold
	}
	if f.projection != "" {
		cfg.Projection = f.projection
	}
	if f.embedder != "" {
		cfg.Embedder.Kind = f.embedder
	}
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	return cfg.Validate()
}

// runPipeline loads inputs and runs one match with cfg.
func runPipeline(cmd *cobra.Command, in *inputFlags, cfg config.MatchConfig) (match.Enriched, match.Summary, error) {
	ref, cmp, err := in.load(cmd.Context())
	if err != nil {
		return nil, match.Summary{}, err
	}

	enc, err := openEncoder(cfg.Embedder)
	if err != nil {
		return nil, match.Summary{}, err
	}
	if enc != nil {
		defer enc.Close()
	}

	p := match.NewPipeline(match.PipelineConfig{
		Match:   cfg,
		Encoder: enc,
		Logger:  logger,
		Debug:   debugMode,
	})
	return p.Run(cmd.Context(), ref, cmp)
}

func createMatchCmd() *cobra.Command {
	var (
		in     inputFlags
		mf     matchFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match reference POIs against a comparison provider",
		Example: `  poimatch match --ref google.csv --cmp overture.geojson --out matches.csv
  poimatch match --ref google.csv --cmp-query "SELECT id, name, lon, lat FROM places" --dsn "$DSN" --out matches.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadMatchConfig()
			if err != nil {
				return err
			}
			if err := mf.apply(&cfg); err != nil {
				return err
			}

			rows, summary, err := runPipeline(cmd, &in, cfg)
			if err != nil {
				return err
			}

			if output != "" {
				if err := export.Save(output, rows); err != nil {
					return fmt.Errorf("failed to export results: %w", err)
				}
				logger.Info().Str("path", output).Int("rows", len(rows)).Msg("results written")
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				match.Summary
				MatchRate float64 `json:"match_rate"`
			}{summary, summary.MatchRate()})
		},
	}

	in.register(cmd)
	mf.register(cmd)
	cmd.Flags().StringVarP(&output, "out", "o", "", "Output file (.csv, .xlsx, .geojson)")
	return cmd
}
