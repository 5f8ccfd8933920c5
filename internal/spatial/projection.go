// Package spatial finds nearby points in a projected, metric plane.
package spatial

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Projection names accepted by NewProjector.
const (
	ProjectionLocal    = "local"
	ProjectionEPSG3857 = "epsg3857"
	ProjectionPlanar   = "planar"
)

// Projector maps a WGS84 (lon, lat) point onto a plane measured in meters.
type Projector interface {
	Project(p orb.Point) orb.Point
}

// ProjectorFunc adapts a plain function to Projector.
type ProjectorFunc func(orb.Point) orb.Point

// Project calls f(p).
func (f ProjectorFunc) Project(p orb.Point) orb.Point { return f(p) }

// WebMercator is EPSG:3857. Distances are inflated by 1/cos(lat), roughly
// 1.3x at 40 degrees.
var WebMercator Projector = ProjectorFunc(project.WGS84.ToMercator)

// Planar leaves coordinates untouched, for data that is already projected.
var Planar Projector = ProjectorFunc(func(p orb.Point) orb.Point { return p })

// LocalMercator is Web Mercator rescaled by cos(reference latitude) so that
// distances are true to scale around the reference latitude.
type LocalMercator struct {
	scale float64
}

// NewLocalMercator returns a LocalMercator centred on lat (degrees).
func NewLocalMercator(lat float64) LocalMercator {
	return LocalMercator{scale: math.Cos(lat * math.Pi / 180)}
}

// Project implements Projector.
func (m LocalMercator) Project(p orb.Point) orb.Point {
	q := project.WGS84.ToMercator(p)
	return orb.Point{q[0] * m.scale, q[1] * m.scale}
}

// CenterLatitude is the mean latitude of every point across the sets; 0 when
// there are none.
func CenterLatitude(sets ...[]orb.Point) float64 {
	var sum float64
	var n int
	for _, set := range sets {
		for _, p := range set {
			sum += p.Lat()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// NewProjector resolves a projection name. The local projection is centred
// on the sample points.
func NewProjector(name string, sample ...[]orb.Point) (Projector, error) {
	switch name {
	case ProjectionLocal, "":
		return NewLocalMercator(CenterLatitude(sample...)), nil
	case ProjectionEPSG3857:
		return WebMercator, nil
	case ProjectionPlanar:
		return Planar, nil
	default:
		return nil, fmt.Errorf("unknown projection %q", name)
	}
}

// ProjectAll projects every point into a new slice.
func ProjectAll(pr Projector, pts []orb.Point) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, p := range pts {
		out[i] = pr.Project(p)
	}
	return out
}
