package report

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/poi-xref/internal/match"
)

// DefaultThresholds are the name-score cut-offs tried by a sweep.
var DefaultThresholds = []float64{50, 55, 60, 65, 70, 75, 80, 85, 90, 95}

// MinAutoAcceptPrecision is the precision a threshold needs before it is
// preferred regardless of F1.
const MinAutoAcceptPrecision = 0.95

// TuningResult holds the outcome of one threshold against the truth set.
type TuningResult struct {
	Threshold      float64       `json:"threshold"`
	TruePositives  int           `json:"true_positives"`
	FalsePositives int           `json:"false_positives"`
	TrueNegatives  int           `json:"true_negatives"`
	FalseNegatives int           `json:"false_negatives"`
	Precision      float64       `json:"precision"`
	Recall         float64       `json:"recall"`
	F1Score        float64       `json:"f1"`
	Accepted       int           `json:"accepted"`
	Labelled       int           `json:"labelled"`
	ProcessingTime time.Duration `json:"processing_ns"`
}

// ThresholdTuner sweeps name thresholds over rows scored with threshold 0,
// so every row with a usable name carries its best candidate in MatchedID.
type ThresholdTuner struct {
	logger zerolog.Logger
}

// NewThresholdTuner creates a new threshold tuner
func NewThresholdTuner(logger zerolog.Logger) *ThresholdTuner {
	return &ThresholdTuner{logger: logger}
}

// TestThresholds evaluates every threshold and logs the recommendation.
// Rows without a truth entry are ignored.
func (tt *ThresholdTuner) TestThresholds(rows match.Enriched, truth Truth, thresholds []float64) ([]*TuningResult, *TuningResult) {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds
	}
	results := make([]*TuningResult, 0, len(thresholds))

	tt.logger.Info().
		Int("thresholds", len(thresholds)).
		Int("labelled", len(truth)).
		Msg("starting threshold tuning")

	for _, threshold := range thresholds {
		result := tt.testThreshold(threshold, rows, truth)
		results = append(results, result)

		tt.logger.Debug().
			Float64("threshold", threshold).
			Float64("precision", result.Precision).
			Float64("recall", result.Recall).
			Float64("f1", result.F1Score).
			Int("accepted", result.Accepted).
			Msg("threshold tested")
	}

	optimal := findOptimalThreshold(results)
	if optimal != nil {
		tt.logger.Info().
			Float64("threshold", optimal.Threshold).
			Float64("precision", optimal.Precision).
			Float64("recall", optimal.Recall).
			Float64("f1", optimal.F1Score).
			Msg("recommended threshold")
	}
	return results, optimal
}

// testThreshold tests a specific threshold value
func (tt *ThresholdTuner) testThreshold(threshold float64, rows match.Enriched, truth Truth) *TuningResult {
	startTime := time.Now()
	result := &TuningResult{Threshold: threshold}

	for _, r := range rows {
		want, labelled := truth[r.ID]
		if !labelled {
			continue
		}
		result.Labelled++

		accepted := r.MatchedID != nil && r.NameScore != nil && *r.NameScore >= threshold
		if accepted {
			result.Accepted++
		}

		switch {
		case accepted && want != "" && *r.MatchedID == want:
			result.TruePositives++
		case accepted:
			result.FalsePositives++
		case want == "":
			result.TrueNegatives++
		default:
			result.FalseNegatives++
		}
	}

	if tp, fp := result.TruePositives, result.FalsePositives; tp+fp > 0 {
		result.Precision = float64(tp) / float64(tp+fp)
	}
	if tp, fn := result.TruePositives, result.FalseNegatives; tp+fn > 0 {
		result.Recall = float64(tp) / float64(tp+fn)
	}
	if p, r := result.Precision, result.Recall; p+r > 0 {
		result.F1Score = 2 * p * r / (p + r)
	}

	result.ProcessingTime = time.Since(startTime)
	return result
}

// findOptimalThreshold finds the threshold with best F1 score, preferring
// those precise enough to auto-accept. Ties keep the lower threshold.
func findOptimalThreshold(results []*TuningResult) *TuningResult {
	if len(results) == 0 {
		return nil
	}

	var best *TuningResult
	for _, result := range results {
		if result.Precision >= MinAutoAcceptPrecision {
			if best == nil || result.F1Score > best.F1Score {
				best = result
			}
		}
	}

	if best == nil {
		for _, result := range results {
			if best == nil || result.F1Score > best.F1Score {
				best = result
			}
		}
	}

	return best
}
