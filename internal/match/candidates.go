package match

import (
	"github.com/poi-xref/internal/spatial"
)

// FindCandidates attaches to every reference POI the comparison POIs within
// opts.MaxDistance meters, nearest first, at most opts.K of them.
func FindCandidates(ref, cmp []POI, opts spatial.Options) Enriched {
	out := NewEnriched(ref)
	hits := spatial.FindNeighbors(points(ref), points(cmp), opts)

	for i, neighbors := range hits {
		cands := make([]Candidate, len(neighbors))
		for j, n := range neighbors {
			cands[j] = Candidate{ID: cmp[n.Index].ID, Distance: n.Distance}
		}
		out[i].Candidates = cands
	}
	return out
}
