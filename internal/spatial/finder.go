package spatial

import (
	"github.com/paulmach/orb"

	"github.com/poi-xref/internal/batch"
)

// Options bounds a candidate search.
type Options struct {
	K           int
	MaxDistance float64 // meters, inclusive
	Projector   Projector
	Workers     int
}

// FindNeighbors projects both point sets and returns, for every query, the
// nearest min(K, len(points)) points within MaxDistance. The result has one
// entry per query in query order; an empty point set yields empty entries.
func FindNeighbors(queries, points []orb.Point, opts Options) [][]Neighbor {
	out := make([][]Neighbor, len(queries))
	if len(points) == 0 || len(queries) == 0 {
		for i := range out {
			out[i] = []Neighbor{}
		}
		return out
	}

	pr := opts.Projector
	if pr == nil {
		pr = NewLocalMercator(CenterLatitude(queries, points))
	}

	ix := NewIndex(ProjectAll(pr, points))
	projected := ProjectAll(pr, queries)

	batch.Chunks(len(projected), opts.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			hits := ix.Nearest(projected[i], opts.K, opts.MaxDistance)
			if hits == nil {
				hits = []Neighbor{}
			}
			out[i] = hits
		}
	})
	return out
}
