package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/poi-xref/internal/match"
)

// Save picks the writer from the file extension.
func Save(path string, rows match.Enriched) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return SaveCSV(path, rows)
	case ".xlsx":
		return SaveXLSX(path, rows, DefaultSheet)
	case ".geojson", ".json":
		return SaveGeoJSON(path, rows)
	default:
		return fmt.Errorf("unsupported output format %q", filepath.Ext(path))
	}
}
