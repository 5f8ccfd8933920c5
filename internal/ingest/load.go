package ingest

import (
	"path/filepath"
	"strings"

	"github.com/poi-xref/internal/match"
)

// Load picks a reader from the file extension: .csv, .geojson/.json or
// .xlsx. The source label defaults to the file's base name.
func Load(path, source string, m Mapping) (match.Collection, error) {
	if source == "" {
		source = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	switch lower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path, source, m)
	case ".geojson", ".json":
		return LoadGeoJSON(path, source, m)
	case ".xlsx":
		return LoadXLSX(path, "", source, m)
	default:
		return match.Collection{}, &UnknownFormatError{Path: path}
	}
}

// MappingFor returns the mapping preset for a provider name: osm, google
// or anything else for the default columns.
func MappingFor(provider string) Mapping {
	switch lower(provider) {
	case "osm", "openstreetmap":
		return OSMMapping()
	case "google", "google_places":
		return GoogleMapping()
	default:
		return DefaultMapping()
	}
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
