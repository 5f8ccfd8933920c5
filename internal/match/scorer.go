package match

import (
	"github.com/poi-xref/internal/batch"
	"github.com/poi-xref/internal/debug"
	"github.com/poi-xref/internal/fuzz"
	"github.com/poi-xref/internal/normalize"
)

// DefaultNameThreshold is the minimum combined name score for a match.
const DefaultNameThreshold = 80.0

// NameOptions configures MatchByName.
type NameOptions struct {
	Threshold  float64
	Normalizer *normalize.Normalizer
	Workers    int
}

// DefaultNameOptions returns the 80 threshold and the default name policy.
func DefaultNameOptions() NameOptions {
	return NameOptions{
		Threshold:  DefaultNameThreshold,
		Normalizer: normalize.NewNameNormalizer(nil),
	}
}

// comparisonName is what name matching needs from a comparison POI.
type comparisonName struct {
	key      string
	raw      *string
	category *string
}

// MatchByName picks, for every row, the candidate whose normalized name
// scores highest against the row's normalized name, and accepts it when
// the score reaches opts.Threshold. Each row is decided independently, so
// several rows may match the same comparison POI.
func MatchByName(localDebug bool, rows Enriched, cmp []POI, opts NameOptions) Enriched {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	n := opts.Normalizer
	if n == nil {
		n = normalize.NewNameNormalizer(nil)
	}

	names := make(map[string]comparisonName, len(cmp))
	for _, p := range cmp {
		if _, dup := names[p.ID]; dup {
			continue
		}
		names[p.ID] = comparisonName{key: n.Key(p.Name), raw: p.Name, category: p.Category}
	}
	debug.DebugOutput(localDebug, "Prepared %d comparison names", len(names))

	out := make(Enriched, len(rows))
	batch.Chunks(len(rows), opts.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = matchRowByName(rows[i], names, n, opts.Threshold)
		}
	})

	debug.DebugOutput(localDebug, "Name matching: %d/%d rows matched at threshold %.1f",
		out.MatchedCount(), len(out), opts.Threshold)
	return out
}

func matchRowByName(row Row, names map[string]comparisonName, n *normalize.Normalizer, threshold float64) Row {
	row.MatchResult = MatchResult{}
	row.NameBreakdown = nil

	if len(row.Candidates) == 0 {
		return row
	}
	query := n.Key(row.Name)
	if query == "" {
		return row
	}

	bestIdx := -1
	var best fuzz.Breakdown
	for i, c := range row.Candidates {
		cand, ok := names[c.ID]
		if !ok {
			continue
		}
		bd := fuzz.Combined(query, cand.key)
		// Strictly greater keeps the nearest candidate on ties.
		if bestIdx < 0 || bd.Max > best.Max {
			bestIdx, best = i, bd
		}
	}
	if bestIdx < 0 {
		return row
	}

	score := best.Max
	row.NameScore = &score
	row.NameBreakdown = &best
	if score < threshold {
		return row
	}

	winner := row.Candidates[bestIdx]
	cand := names[winner.ID]
	id, dist := winner.ID, winner.Distance
	row.MatchedID = &id
	row.LocationDistance = &dist
	row.MatchedName = cand.raw
	row.MatchedCategory = cand.category
	return row
}
