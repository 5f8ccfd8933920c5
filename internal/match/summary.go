package match

import "time"

// Summary counts the outcomes of a run.
type Summary struct {
	RunID          string        `json:"run_id"`
	Reference      string        `json:"reference"`
	Comparison     string        `json:"comparison"`
	ReferenceRows  int           `json:"reference_rows"`
	ComparisonRows int           `json:"comparison_rows"`
	WithCandidates int           `json:"with_candidates"`
	Matched        int           `json:"matched"`
	BelowThreshold int           `json:"below_threshold"`
	NotAttempted   int           `json:"not_attempted"`
	AddressScored  int           `json:"address_scored"`
	CategoryScored int           `json:"category_scored"`
	MeanNameScore  float64       `json:"mean_name_score"`
	MeanAddress    float64       `json:"mean_address_score"`
	MeanCategory   float64       `json:"mean_category_similarity"`
	Duration       time.Duration `json:"duration_ns"`
}

// MatchRate is Matched / ReferenceRows, 0 for an empty run.
func (s Summary) MatchRate() float64 {
	if s.ReferenceRows == 0 {
		return 0
	}
	return float64(s.Matched) / float64(s.ReferenceRows)
}

// Summarize counts rows by outcome and averages the scores of matched rows.
func Summarize(rows Enriched) Summary {
	s := Summary{ReferenceRows: len(rows)}
	var nameSum, addrSum, catSum float64

	for _, r := range rows {
		if len(r.Candidates) > 0 {
			s.WithCandidates++
		}
		switch {
		case r.NameScore == nil:
			s.NotAttempted++
		case r.Matched():
			s.Matched++
			nameSum += *r.NameScore
		default:
			s.BelowThreshold++
		}
		if r.AddressScore != nil {
			s.AddressScored++
			addrSum += float64(*r.AddressScore)
		}
		if r.CategorySimilarity != nil {
			s.CategoryScored++
			catSum += *r.CategorySimilarity
		}
	}

	if s.Matched > 0 {
		s.MeanNameScore = nameSum / float64(s.Matched)
	}
	if s.AddressScored > 0 {
		s.MeanAddress = addrSum / float64(s.AddressScored)
	}
	if s.CategoryScored > 0 {
		s.MeanCategory = catSum / float64(s.CategoryScored)
	}
	return s
}
