// Package ingest loads provider POI exports into match collections.
package ingest

import (
	"errors"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/poi-xref/internal/match"
)

// Mapping names the source fields that make up a POI. Field names are
// matched case-insensitively against a header row or property keys.
type Mapping struct {
	ID  string
	Lon string
	Lat string

	Name    string
	Address string

	// Category lists fields tried in order; the first non-missing wins
	// (OSM spreads it over amenity, shop, tourism, ...).
	Category []string

	// OSMAddress assembles the address from addr:housenumber, addr:street
	// and addr:housename when Address is absent or missing.
	OSMAddress bool

	// SimplifyAddress keeps only the street part of a formatted address.
	SimplifyAddress bool

	// Attributes are copied verbatim into POI.Attributes.
	Attributes []string

	// KeepFirstDuplicate skips repeated ids instead of failing.
	KeepFirstDuplicate bool
}

// DefaultMapping reads id, name, category, address, lon and lat.
func DefaultMapping() Mapping {
	return Mapping{
		ID:       "id",
		Lon:      "lon",
		Lat:      "lat",
		Name:     "name",
		Address:  "address",
		Category: []string{"category"},
	}
}

// OSMCategoryKeys are the OSM tag keys a category is taken from, in order.
var OSMCategoryKeys = []string{
	"amenity", "shop", "tourism", "leisure", "office", "healthcare",
	"religion", "emergency", "historic", "government", "craft", "public_transport",
}

// OSMMapping reads OSM extracts flattened to one column per tag.
func OSMMapping() Mapping {
	m := DefaultMapping()
	m.Category = append([]string{"cat"}, OSMCategoryKeys...)
	m.OSMAddress = true
	return m
}

// GoogleMapping reads Places exports, simplifying the formatted address.
func GoogleMapping() Mapping {
	m := DefaultMapping()
	m.Category = []string{"primary_type", "category"}
	m.SimplifyAddress = true
	return m
}

// missingTokens are cell values treated as absent.
var missingTokens = map[string]struct{}{
	"": {}, "nan": {}, "none": {}, "null": {}, "n/a": {}, "<na>": {},
}

func isMissing(v string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// record is one source row, keyed by lower-cased field name.
type record map[string]string

func (r record) get(field string) (string, bool) {
	if field == "" {
		return "", false
	}
	v, ok := r[strings.ToLower(field)]
	if !ok || isMissing(v) {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (r record) text(field string) *string {
	if v, ok := r.get(field); ok {
		return &v
	}
	return nil
}

// builder turns records into a collection, enforcing id uniqueness.
type builder struct {
	source  string
	mapping Mapping
	seen    map[string]struct{}
	pois    []match.POI
}

func newBuilder(source string, m Mapping) *builder {
	return &builder{source: source, mapping: m, seen: make(map[string]struct{})}
}

func (b *builder) add(row int, r record) error {
	m := b.mapping

	id, ok := r.get(m.ID)
	if !ok {
		return NewInputError(b.source, row, m.ID, "missing id")
	}
	if _, dup := b.seen[id]; dup {
		if m.KeepFirstDuplicate {
			return nil
		}
		return &DuplicateIDError{Source: b.source, ID: id, Row: row}
	}

	lon, err := parseCoord(r, m.Lon)
	if err != nil {
		return NewInputError(b.source, row, m.Lon, "%v", err)
	}
	lat, err := parseCoord(r, m.Lat)
	if err != nil {
		return NewInputError(b.source, row, m.Lat, "%v", err)
	}
	return b.addPOI(row, id, orb.Point{lon, lat}, r)
}

func (b *builder) addPOI(row int, id string, loc orb.Point, r record) error {
	m := b.mapping
	if loc.Lon() < -180 || loc.Lon() > 180 || loc.Lat() < -90 || loc.Lat() > 90 {
		return NewInputError(b.source, row, "", "coordinates out of range: %v", loc)
	}

	p := match.POI{
		ID:       id,
		Location: loc,
		Name:     r.text(m.Name),
		Address:  r.text(m.Address),
	}
	for _, field := range m.Category {
		if p.Category = r.text(field); p.Category != nil {
			break
		}
	}
	if p.Address == nil && m.OSMAddress {
		p.Address = BuildOSMAddress(r)
	}
	if p.Address != nil && m.SimplifyAddress {
		if simple := SimplifyAddress(*p.Address); simple != "" {
			p.Address = &simple
		}
	}
	if len(m.Attributes) > 0 {
		p.Attributes = make(map[string]string, len(m.Attributes))
		for _, field := range m.Attributes {
			if v, ok := r.get(field); ok {
				p.Attributes[field] = v
			}
		}
	}

	b.seen[id] = struct{}{}
	b.pois = append(b.pois, p)
	return nil
}

func (b *builder) collection() match.Collection {
	pois := b.pois
	if pois == nil {
		pois = []match.POI{}
	}
	return match.Collection{Source: b.source, POIs: pois}
}

var errMissingCoord = errors.New("missing coordinate")

func parseCoord(r record, field string) (float64, error) {
	v, ok := r.get(field)
	if !ok {
		return 0, errMissingCoord
	}
	return strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
}
