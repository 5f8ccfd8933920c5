package spatial

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Neighbor is a hit from an Index query: the position of the point in the
// slice the index was built from and its planar distance.
type Neighbor struct {
	Index    int
	Distance float64
}

// Index is a static KD-tree over planar points.
type Index struct {
	tree *kdtree.Tree
	size int
}

// NewIndex builds an index over pts. pts is not modified.
func NewIndex(pts []orb.Point) *Index {
	if len(pts) == 0 {
		return &Index{}
	}
	nodes := make(nodeList, len(pts))
	for i, p := range pts {
		nodes[i] = node{p: p, idx: i}
	}
	return &Index{tree: kdtree.New(nodes, false), size: len(pts)}
}

// Len is the number of indexed points.
func (ix *Index) Len() int { return ix.size }

// Nearest returns up to k indexed points nearest to q whose distance is at
// most maxDist (inclusive), ordered by distance and then by index.
func (ix *Index) Nearest(q orb.Point, k int, maxDist float64) []Neighbor {
	if ix.tree == nil || k <= 0 {
		return nil
	}
	if k > ix.size {
		k = ix.size
	}

	keeper := kdtree.NewNKeeper(k)
	ix.tree.NearestSet(keeper, node{p: q, idx: -1})

	out := make([]Neighbor, 0, len(keeper.Heap))
	for _, cd := range keeper.Heap {
		if cd.Comparable == nil {
			continue
		}
		d := math.Sqrt(cd.Dist)
		if d > maxDist {
			continue
		}
		out = append(out, Neighbor{Index: cd.Comparable.(node).idx, Distance: d})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// node is a kdtree.Comparable remembering its position in the input, since
// building the tree reorders the backing slice.
type node struct {
	p   orb.Point
	idx int
}

func (n node) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return n.p[d] - c.(node).p[d]
}

func (n node) Dims() int { return 2 }

// Distance is squared Euclidean, as kdtree expects.
func (n node) Distance(c kdtree.Comparable) float64 {
	o := c.(node)
	dx, dy := n.p[0]-o.p[0], n.p[1]-o.p[1]
	return dx*dx + dy*dy
}

type nodeList []node

func (l nodeList) Index(i int) kdtree.Comparable         { return l[i] }
func (l nodeList) Len() int                              { return len(l) }
func (l nodeList) Pivot(d kdtree.Dim) int                { return plane{Dim: d, nodeList: l}.Pivot() }
func (l nodeList) Slice(start, end int) kdtree.Interface { return l[start:end] }

type plane struct {
	kdtree.Dim
	nodeList
}

func (p plane) Less(i, j int) bool {
	return p.nodeList[i].p[p.Dim] < p.nodeList[j].p[p.Dim]
}

func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	return plane{Dim: p.Dim, nodeList: p.nodeList[start:end]}
}

func (p plane) Swap(i, j int) {
	p.nodeList[i], p.nodeList[j] = p.nodeList[j], p.nodeList[i]
}
