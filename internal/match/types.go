package match

import (
	"github.com/paulmach/orb"

	"github.com/poi-xref/internal/fuzz"
)

// POI is one place record from a provider. Nil text fields are missing
// values, not errors.
type POI struct {
	ID         string            `json:"id"`
	Location   orb.Point         `json:"location"` // lon, lat (WGS84)
	Name       *string           `json:"name"`
	Category   *string           `json:"category"`
	Address    *string           `json:"address"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Collection is an ordered set of POIs from one source.
type Collection struct {
	Source string `json:"source"`
	POIs   []POI  `json:"pois"`
}

// Points returns the locations of c in order.
func (c Collection) Points() []orb.Point {
	return points(c.POIs)
}

// Candidate is a comparison POI near a reference POI.
type Candidate struct {
	ID       string  `json:"id"`
	Distance float64 `json:"distance_m"`
}

// MatchResult is the outcome of name matching. MatchedID is set only when
// NameScore reached the threshold; NameScore is nil only when no match could
// be attempted (no candidates or an unusable name).
type MatchResult struct {
	MatchedID        *string  `json:"matched_id"`
	NameScore        *float64 `json:"name_score"`
	LocationDistance *float64 `json:"location_distance_m"`
	MatchedName      *string  `json:"matched_name"`
	MatchedCategory  *string  `json:"matched_category"`
}

// Diagnostics are descriptive scores computed for matched rows only. They
// never change the match decision.
type Diagnostics struct {
	AddressScore       *int            `json:"address_score"`
	MatchedAddress     *string         `json:"matched_address"`
	CategorySimilarity *float64        `json:"category_similarity"`
	NameBreakdown      *fuzz.Breakdown `json:"name_breakdown,omitempty"`
}

// Row is a reference POI enriched by the pipeline stages.
type Row struct {
	POI
	Candidates []Candidate `json:"candidates"`
	MatchResult
	Diagnostics
}

// Matched reports whether the row has an accepted match.
func (r Row) Matched() bool {
	return r.MatchedID != nil
}

// Enriched is the pipeline output, one Row per reference POI in input order.
type Enriched []Row

// NewEnriched wraps reference POIs into rows with nothing attached.
func NewEnriched(ref []POI) Enriched {
	out := make(Enriched, len(ref))
	for i, p := range ref {
		out[i] = Row{POI: p, Candidates: []Candidate{}}
	}
	return out
}

// MatchedCount counts rows with an accepted match.
func (e Enriched) MatchedCount() int {
	n := 0
	for _, r := range e {
		if r.Matched() {
			n++
		}
	}
	return n
}

// Points returns the reference locations of e in order.
func (e Enriched) Points() []orb.Point {
	out := make([]orb.Point, len(e))
	for i, r := range e {
		out[i] = r.Location
	}
	return out
}

// StrPtr returns a pointer to s.
func StrPtr(s string) *string { return &s }

func points(pois []POI) []orb.Point {
	out := make([]orb.Point, len(pois))
	for i, p := range pois {
		out[i] = p.Location
	}
	return out
}

// comparisonIndex maps comparison ids to their position.
func comparisonIndex(cmp []POI) map[string]int {
	idx := make(map[string]int, len(cmp))
	for i, p := range cmp {
		if _, dup := idx[p.ID]; !dup {
			idx[p.ID] = i
		}
	}
	return idx
}
