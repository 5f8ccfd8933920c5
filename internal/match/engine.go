package match

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/poi-xref/internal/config"
	"github.com/poi-xref/internal/debug"
	"github.com/poi-xref/internal/embeddings"
	"github.com/poi-xref/internal/normalize"
	"github.com/poi-xref/internal/spatial"
)

// Pipeline runs candidate search, name matching and the address and
// category diagnostics over one pair of collections.
type Pipeline struct {
	cfg       config.MatchConfig
	names     *normalize.Normalizer
	addresses *normalize.Normalizer
	encoder   embeddings.Encoder
	logger    zerolog.Logger
	debug     bool
}

// PipelineConfig holds the collaborators of a Pipeline. Nil normalizers
// fall back to the defaults; a nil Encoder disables category scoring.
type PipelineConfig struct {
	Match     config.MatchConfig
	Names     *normalize.Normalizer
	Addresses *normalize.Normalizer
	Encoder   embeddings.Encoder
	Logger    zerolog.Logger
	Debug     bool
}

// NewPipeline creates a pipeline.
func NewPipeline(pc PipelineConfig) *Pipeline {
	names := pc.Names
	if names == nil {
		names = normalize.NewNameNormalizer(pc.Match.NonPrimaryTokens)
	}
	addresses := pc.Addresses
	if addresses == nil {
		addresses = normalize.NewAddressNormalizer()
	}
	return &Pipeline{
		cfg:       pc.Match,
		names:     names,
		addresses: addresses,
		encoder:   pc.Encoder,
		logger:    pc.Logger,
		debug:     pc.Debug,
	}
}

// Run enriches ref against cmp. Rows come back in ref order. Errors only
// come from configuration, the encoder or ctx; missing values, empty
// candidate sets and low scores are part of the result.
func (p *Pipeline) Run(ctx context.Context, ref, cmp Collection) (Enriched, Summary, error) {
	debug.DebugHeader(p.debug)
	defer debug.DebugFooter(p.debug)

	runID := uuid.NewString()
	logger := p.logger.With().Str("run_id", runID).Logger()
	started := time.Now()

	logger.Info().
		Str("reference", ref.Source).Int("reference_rows", len(ref.POIs)).
		Str("comparison", cmp.Source).Int("comparison_rows", len(cmp.POIs)).
		Msg("match run started")

	// Step 1: spatial candidates
	projector, err := spatial.NewProjector(p.cfg.Projection, ref.Points(), cmp.Points())
	if err != nil {
		return nil, Summary{}, fmt.Errorf("run %s: %w", runID, err)
	}
	stageStart := time.Now()
	rows := FindCandidates(ref.POIs, cmp.POIs, spatial.Options{
		K:           p.cfg.K,
		MaxDistance: p.cfg.MaxDistance,
		Projector:   projector,
		Workers:     p.cfg.Workers,
	})
	logger.Debug().Str("stage", "candidates").Dur("took", time.Since(stageStart)).
		Int("k", p.cfg.K).Float64("max_distance_m", p.cfg.MaxDistance).Msg("stage done")
	if err := ctx.Err(); err != nil {
		return nil, Summary{}, err
	}

	// Step 2: name matching
	stageStart = time.Now()
	rows = MatchByName(p.debug, rows, cmp.POIs, NameOptions{
		Threshold:  p.cfg.NameThreshold,
		Normalizer: p.names,
		Workers:    p.cfg.Workers,
	})
	logger.Debug().Str("stage", "names").Dur("took", time.Since(stageStart)).
		Int("matched", rows.MatchedCount()).Msg("stage done")
	if err := ctx.Err(); err != nil {
		return nil, Summary{}, err
	}

	// Step 3: diagnostics on matched rows
	stageStart = time.Now()
	rows = ScoreAddresses(rows, cmp.POIs, p.addresses)
	logger.Debug().Str("stage", "addresses").Dur("took", time.Since(stageStart)).Msg("stage done")

	stageStart = time.Now()
	rows, err = ScoreCategories(ctx, rows, p.encoder, p.cfg.Embedder.BatchSize)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("run %s: %w", runID, err)
	}
	if p.encoder == nil {
		logger.Warn().Msg("no encoder configured, category similarity skipped")
	} else {
		logger.Debug().Str("stage", "categories").Str("model", p.encoder.ModelID()).
			Dur("took", time.Since(stageStart)).Msg("stage done")
	}

	summary := Summarize(rows)
	summary.RunID = runID
	summary.Reference = ref.Source
	summary.Comparison = cmp.Source
	summary.ComparisonRows = len(cmp.POIs)
	summary.Duration = time.Since(started)

	logger.Info().
		Int("matched", summary.Matched).
		Int("below_threshold", summary.BelowThreshold).
		Int("not_attempted", summary.NotAttempted).
		Dur("took", summary.Duration).
		Msg("match run finished")

	return rows, summary, nil
}
