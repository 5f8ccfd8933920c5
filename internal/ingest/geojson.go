package ingest

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/poi-xref/internal/match"
)

// ReadGeoJSON parses a FeatureCollection. The id comes from the mapped
// property or, failing that, the feature id. Non-point geometries are
// reduced to their centroid.
func ReadGeoJSON(data []byte, source string, m Mapping) (match.Collection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return match.Collection{}, NewInputError(source, 0, "", "invalid geojson: %v", err)
	}

	b := newBuilder(source, m)
	for i, f := range fc.Features {
		row := i + 1
		if f.Geometry == nil {
			return match.Collection{}, NewInputError(source, row, "geometry", "missing geometry")
		}

		r := make(record, len(f.Properties))
		for k, v := range f.Properties {
			if v == nil {
				continue
			}
			r[lower(k)] = fmt.Sprint(v)
		}

		id, ok := r.get(m.ID)
		if !ok && f.ID != nil {
			id, ok = fmt.Sprint(f.ID), true
		}
		if !ok {
			return match.Collection{}, NewInputError(source, row, m.ID, "missing id")
		}
		if _, dup := b.seen[id]; dup {
			if m.KeepFirstDuplicate {
				continue
			}
			return match.Collection{}, &DuplicateIDError{Source: source, ID: id, Row: row}
		}

		if err := b.addPOI(row, id, representativePoint(f.Geometry), r); err != nil {
			return match.Collection{}, err
		}
	}
	return b.collection(), nil
}

// LoadGeoJSON reads path with ReadGeoJSON.
func LoadGeoJSON(path, source string, m Mapping) (match.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return match.Collection{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ReadGeoJSON(data, source, m)
}

func representativePoint(g orb.Geometry) orb.Point {
	if p, ok := g.(orb.Point); ok {
		return p
	}
	c, _ := planar.CentroidArea(g)
	return c
}
