package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/poi-xref/internal/match"
	"github.com/poi-xref/internal/report"
	"github.com/poi-xref/internal/spatial"
)

// Report is the document written by the report command.
type Report struct {
	Summary       match.Summary          `json:"summary"`
	MatchRate     float64                `json:"match_rate"`
	Center        orb.Point              `json:"center"`
	Bins          []report.Bin           `json:"bins"`
	ByBin         []report.BinStats      `json:"by_category_and_bin"`
	CategoryRates []report.CategoryRate  `json:"category_match_rate"`
	NonMatches    []report.NonMatchStats `json:"non_match_by_category"`
}

func createReportCmd() *cobra.Command {
	var (
		in        inputFlags
		mf        matchFlags
		truthPath string
		center    string
		bins      int
		top       int
		km2       bool
		output    string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Match, then summarize matches and misses by category and distance ring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadMatchConfig()
			if err != nil {
				return err
			}
			if err := mf.apply(&cfg); err != nil {
				return err
			}

			truth, err := loadTruth(truthPath)
			if err != nil {
				return err
			}

			rows, summary, err := runPipeline(cmd, &in, cfg)
			if err != nil {
				return err
			}

			pts := rows.Points()
			c := report.Centroid(pts)
			if center != "" {
				if c, err = parsePoint(center); err != nil {
					return err
				}
			}
			pr, err := spatial.NewProjector(cfg.Projection, pts)
			if err != nil {
				return err
			}
			db := report.NewDistanceBins(pts, c, bins, pr)

			doc := Report{
				Summary:       summary,
				MatchRate:     summary.MatchRate(),
				Center:        c,
				Bins:          db.Bins,
				ByBin:         report.MatchMissByBin(rows, db, truth, report.Options{SquareKilometers: km2}),
				CategoryRates: report.CategoryMatchRate(rows, truth),
				NonMatches:    report.NonMatchByCategory(rows, truth, top),
			}

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create report: %w", err)
				}
				defer f.Close()
				out = f
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
	}

	in.register(cmd)
	mf.register(cmd)
	fl := cmd.Flags()
	fl.StringVar(&truthPath, "truth", "", "CSV with id,true_id columns labelling correct matches")
	fl.StringVar(&center, "center", "", "Ring center as lon,lat (default: centroid of the reference)")
	fl.IntVar(&bins, "bins", report.DefaultBins, "Number of distance rings")
	fl.IntVar(&top, "top", 20, "Categories kept in the non-match table (0 keeps all)")
	fl.BoolVar(&km2, "km2", false, "Report ring areas in square kilometers")
	fl.StringVarP(&output, "out", "o", "", "Write the report JSON here instead of stdout")
	return cmd
}

func createTuneCmd() *cobra.Command {
	var (
		in         inputFlags
		mf         matchFlags
		truthPath  string
		thresholds []float64
	)

	cmd := &cobra.Command{
		Use:   "tune",
		Short: "Sweep name thresholds against labelled matches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadMatchConfig()
			if err != nil {
				return err
			}
			if err := mf.apply(&cfg); err != nil {
				return err
			}
			if truthPath == "" {
				return fmt.Errorf("tune needs --truth")
			}
			truth, err := loadTruth(truthPath)
			if err != nil {
				return err
			}

			// Threshold 0 keeps every winner so the sweep can cut afterwards.
			cfg.NameThreshold = 0
			cfg.Embedder.Kind = "none"
			rows, _, err := runPipeline(cmd, &in, cfg)
			if err != nil {
				return err
			}

			tuner := report.NewThresholdTuner(logger)
			results, best := tuner.TestThresholds(rows, truth, thresholds)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "THRESHOLD\tTP\tFP\tTN\tFN\tPRECISION\tRECALL\tF1")
			for _, r := range results {
				fmt.Fprintf(w, "%.1f\t%d\t%d\t%d\t%d\t%.3f\t%.3f\t%.3f\n",
					r.Threshold, r.TruePositives, r.FalsePositives, r.TrueNegatives, r.FalseNegatives,
					r.Precision, r.Recall, r.F1Score)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if best != nil {
				fmt.Printf("\nRecommended threshold: %.1f (precision %.1f%%, recall %.1f%%)\n",
					best.Threshold, best.Precision*100, best.Recall*100)
			}
			return nil
		},
	}

	in.register(cmd)
	mf.register(cmd)
	cmd.Flags().StringVar(&truthPath, "truth", "", "CSV with id,true_id columns labelling correct matches")
	cmd.Flags().Float64SliceVar(&thresholds, "thresholds", report.DefaultThresholds, "Name thresholds to try")
	return cmd
}

func loadTruth(path string) (report.Truth, error) {
	if path == "" {
		return nil, nil
	}
	truth, err := report.LoadTruth(path)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("labelled", len(truth)).Msg("truth loaded")
	return truth, nil
}

func parsePoint(s string) (orb.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return orb.Point{}, fmt.Errorf("invalid point %q, want lon,lat", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid longitude in %q: %w", s, err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid latitude in %q: %w", s, err)
	}
	return orb.Point{lon, lat}, nil
}
