// Package report summarizes enriched collections: distance rings around a
// point, match and miss counts by category, and threshold sweeps against
// labelled matches.
package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/poi-xref/internal/spatial"
)

// DefaultBins is the number of distance rings when none is given.
const DefaultBins = 20

// Bin is one distance ring. The first bin includes its left edge, the
// others only their right edge.
type Bin struct {
	Index int     `json:"index"`
	Left  float64 `json:"left_m"`
	Right float64 `json:"right_m"`
}

// Label renders the interval the way it is printed in reports.
func (b Bin) Label() string {
	open := "("
	if b.Index == 0 {
		open = "["
	}
	return fmt.Sprintf("%s%.1f, %.1f]", open, b.Left, b.Right)
}

// Area is the ring area in square meters.
func (b Bin) Area() float64 {
	return math.Pi * (b.Right*b.Right - b.Left*b.Left)
}

// DistanceBins holds the distance of every point to a center and the ring
// each one falls in.
type DistanceBins struct {
	Center    orb.Point `json:"center"`
	Bins      []Bin     `json:"bins"`
	Distances []float64 `json:"distances_m"`
	Assigned  []int     `json:"bin_of"`
}

// NewDistanceBins measures pts against center after projecting both, then
// splits [min, max] into n equal-width rings.
func NewDistanceBins(pts []orb.Point, center orb.Point, n int, pr spatial.Projector) DistanceBins {
	if n <= 0 {
		n = DefaultBins
	}
	if pr == nil {
		pr = spatial.WebMercator
	}

	out := DistanceBins{
		Center:    center,
		Distances: make([]float64, len(pts)),
		Assigned:  make([]int, len(pts)),
	}
	if len(pts) == 0 {
		return out
	}

	c := pr.Project(center)
	dmin, dmax := math.Inf(1), math.Inf(-1)
	for i, p := range pts {
		q := pr.Project(p)
		d := math.Hypot(q[0]-c[0], q[1]-c[1])
		out.Distances[i] = d
		dmin = math.Min(dmin, d)
		dmax = math.Max(dmax, d)
	}

	edges := linspace(dmin, dmax, n+1)
	out.Bins = make([]Bin, n)
	for i := range out.Bins {
		out.Bins[i] = Bin{Index: i, Left: edges[i], Right: edges[i+1]}
	}
	for i, d := range out.Distances {
		out.Assigned[i] = binOf(edges, d)
	}
	return out
}

// Centroid is the mean of pts, used as the default ring center.
func Centroid(pts []orb.Point) orb.Point {
	if len(pts) == 0 {
		return orb.Point{}
	}
	var sx, sy float64
	for _, p := range pts {
		sx += p[0]
		sy += p[1]
	}
	n := float64(len(pts))
	return orb.Point{sx / n, sy / n}
}

func linspace(lo, hi float64, num int) []float64 {
	out := make([]float64, num)
	step := (hi - lo) / float64(num-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[num-1] = hi
	return out
}

// binOf returns the right-closed interval holding d; the lowest edge
// belongs to bin 0.
func binOf(edges []float64, d float64) int {
	i := sort.SearchFloat64s(edges, d)
	switch {
	case i <= 1:
		return 0
	case i >= len(edges):
		return len(edges) - 2
	default:
		return i - 1
	}
}
