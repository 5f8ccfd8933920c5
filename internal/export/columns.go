// Package export writes an enriched collection to CSV, XLSX or GeoJSON.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/poi-xref/internal/match"
)

// Header is the column layout shared by the tabular writers.
var Header = []string{
	"id", "lon", "lat", "name", "category", "address",
	"candidate_ids", "candidate_distances",
	"matched_id", "name_score", "location_distance",
	"matched_name", "matched_category",
	"address_score", "matched_address", "category_similarity",
}

// candidateSep joins candidate ids and distances inside one cell.
const candidateSep = "|"

// rowValues converts one row to its column values. Missing values are
// returned as nil so each writer can choose its empty representation.
func rowValues(r match.Row) []interface{} {
	safeString := func(s *string) interface{} {
		if s == nil {
			return nil
		}
		return *s
	}
	safeFloat := func(f *float64) interface{} {
		if f == nil {
			return nil
		}
		return *f
	}
	safeInt := func(i *int) interface{} {
		if i == nil {
			return nil
		}
		return *i
	}

	ids := make([]string, len(r.Candidates))
	dists := make([]string, len(r.Candidates))
	for i, c := range r.Candidates {
		ids[i] = c.ID
		dists[i] = strconv.FormatFloat(c.Distance, 'f', 3, 64)
	}

	return []interface{}{
		r.ID,
		r.Location.Lon(),
		r.Location.Lat(),
		safeString(r.Name),
		safeString(r.Category),
		safeString(r.Address),
		strings.Join(ids, candidateSep),
		strings.Join(dists, candidateSep),
		safeString(r.MatchedID),
		safeFloat(r.NameScore),
		safeFloat(r.LocationDistance),
		safeString(r.MatchedName),
		safeString(r.MatchedCategory),
		safeInt(r.AddressScore),
		safeString(r.MatchedAddress),
		safeFloat(r.CategorySimilarity),
	}
}

// formatCell renders a column value as text.
func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}
