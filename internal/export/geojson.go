package export

import (
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"

	"github.com/poi-xref/internal/match"
)

// FeatureCollection builds one point feature per row. Properties carry
// the same columns as Header except the coordinates; candidates are kept
// as an array.
func FeatureCollection(rows match.Enriched) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range rows {
		f := geojson.NewFeature(r.Location)
		f.ID = r.ID

		values := rowValues(r)
		for i, col := range Header {
			switch col {
			case "lon", "lat", "candidate_ids", "candidate_distances":
				continue
			}
			f.Properties[col] = values[i]
		}
		f.Properties["candidates"] = r.Candidates

		for k, v := range r.Attributes {
			if _, taken := f.Properties[k]; !taken {
				f.Properties[k] = v
			}
		}
		fc.Append(f)
	}
	return fc
}

// SaveGeoJSON writes rows as a GeoJSON FeatureCollection.
func SaveGeoJSON(path string, rows match.Enriched) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	data, err := FeatureCollection(rows).MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode features: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
