package report

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/poi-xref/internal/match"
)

// UnknownCategory groups reference rows without a category.
const UnknownCategory = "unknown"

// BinStats counts outcomes of one category within one distance ring.
type BinStats struct {
	Category        string  `json:"category"`
	Bin             Bin     `json:"bin"`
	BinID           int     `json:"bin_id"`
	Total           int     `json:"n_total"`
	Matches         int     `json:"n_match"`
	NonMatches      int     `json:"n_nonmatch"`
	Mistakes        int     `json:"n_mistake"`
	Misses          int     `json:"n_miss"`
	MedianNameScore float64 `json:"median_name_score"`
	MatchShare      float64 `json:"match_c"`
	NonMatchShare   float64 `json:"non_match_c"`
	RingArea        float64 `json:"ring_area"`
	MatchDensity    float64 `json:"match_den"`
	NonMatchDensity float64 `json:"nonmatch_den"`
	TotalDensity    float64 `json:"total_den"`
}

// CategoryRate is the share of a category's reference rows that matched.
type CategoryRate struct {
	Category  string  `json:"category"`
	Reference int     `json:"reference_count"`
	Share     float64 `json:"category_share"`
	Matched   int     `json:"matched_count"`
	Rate      float64 `json:"match_rate"`
}

// NonMatchStats splits the rows of a category that did not match
// correctly into mistakes and misses.
type NonMatchStats struct {
	Category      string  `json:"category"`
	Total         int     `json:"total_count"`
	Mistakes      int     `json:"n_mistake"`
	Misses        int     `json:"n_miss"`
	TotalNonMatch int     `json:"total_non_match"`
	MissRate      float64 `json:"miss_rate"`
	MeanNameScore float64 `json:"mean_name_score"`
}

// Options control area units for ring densities.
type Options struct {
	SquareKilometers bool
}

// MatchMissByBin groups rows by category and ring. Rings with no rows in a
// category are omitted and BinID numbers the remaining rings of each
// category from 1.
func MatchMissByBin(rows match.Enriched, bins DistanceBins, truth Truth, opts Options) []BinStats {
	type key struct {
		cat string
		bin int
	}
	groups := make(map[key][]int)
	for i, r := range rows {
		k := key{categoryOf(r), bins.Assigned[i]}
		groups[k] = append(groups[k], i)
	}

	keys := make([]key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].cat != keys[j].cat {
			return keys[i].cat < keys[j].cat
		}
		return keys[i].bin < keys[j].bin
	})

	out := make([]BinStats, 0, len(keys))
	binID := 0
	for i, k := range keys {
		if i == 0 || keys[i-1].cat != k.cat {
			binID = 0
		}
		binID++

		s := BinStats{Category: k.cat, Bin: bins.Bins[k.bin], BinID: binID}
		var scores []float64
		for _, idx := range groups[k] {
			r := rows[idx]
			s.Total++
			switch truth.Classify(r) {
			case LabelMatch:
				s.Matches++
			case LabelMistake:
				s.Mistakes++
			case LabelMiss:
				s.Misses++
			}
			if r.NameScore != nil {
				scores = append(scores, *r.NameScore)
			}
		}
		s.NonMatches = s.Total - s.Matches
		s.MedianNameScore = median(scores)
		s.MatchShare = float64(s.Matches) / float64(s.Total)
		s.NonMatchShare = float64(s.NonMatches) / float64(s.Total)

		s.RingArea = s.Bin.Area()
		if opts.SquareKilometers {
			s.RingArea /= 1e6
		}
		if s.RingArea > 0 {
			s.MatchDensity = float64(s.Matches) / s.RingArea
			s.NonMatchDensity = float64(s.NonMatches) / s.RingArea
			s.TotalDensity = float64(s.Total) / s.RingArea
		}
		out = append(out, s)
	}
	return out
}

// CategoryMatchRate reports, per category with at least one correct match,
// the reference count and the matched share, largest categories first.
func CategoryMatchRate(rows match.Enriched, truth Truth) []CategoryRate {
	refCount := make(map[string]int)
	matched := make(map[string]int)
	for _, r := range rows {
		cat := categoryOf(r)
		refCount[cat]++
		if truth.Classify(r) == LabelMatch {
			matched[cat]++
		}
	}

	out := make([]CategoryRate, 0, len(matched))
	for cat, m := range matched {
		ref := refCount[cat]
		out = append(out, CategoryRate{
			Category:  cat,
			Reference: ref,
			Share:     float64(ref) / float64(len(rows)),
			Matched:   m,
			Rate:      float64(m) / float64(ref),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Reference != out[j].Reference {
			return out[i].Reference > out[j].Reference
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// NonMatchByCategory counts mistakes and misses per category, most
// non-matches first, keeping at most top categories (all when top <= 0).
func NonMatchByCategory(rows match.Enriched, truth Truth, top int) []NonMatchStats {
	byCat := make(map[string]*NonMatchStats)
	scores := make(map[string][]float64)
	for _, r := range rows {
		cat := categoryOf(r)
		s, ok := byCat[cat]
		if !ok {
			s = &NonMatchStats{Category: cat}
			byCat[cat] = s
		}
		s.Total++
		switch truth.Classify(r) {
		case LabelMistake:
			s.Mistakes++
		case LabelMiss:
			s.Misses++
		}
		if r.NameScore != nil {
			scores[cat] = append(scores[cat], *r.NameScore)
		}
	}

	out := make([]NonMatchStats, 0, len(byCat))
	for cat, s := range byCat {
		s.TotalNonMatch = s.Mistakes + s.Misses
		s.MissRate = float64(s.TotalNonMatch) / float64(s.Total)
		if len(scores[cat]) > 0 {
			s.MeanNameScore = stat.Mean(scores[cat], nil)
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalNonMatch != out[j].TotalNonMatch {
			return out[i].TotalNonMatch > out[j].TotalNonMatch
		}
		return out[i].Category < out[j].Category
	})
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}

func categoryOf(r match.Row) string {
	if isBlank(r.Category) {
		return UnknownCategory
	}
	return *r.Category
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// median interpolates between the middle values of an even-sized sample
// and returns 0 for an empty one.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
