package ingest

// BuildOSMAddress assembles "housenumber street" from OSM addr:* tags,
// falling back to the street alone and then to addr:housename. Returns nil
// when none is present.
func BuildOSMAddress(r map[string]string) *string {
	rec := record(r)
	num, hasNum := rec.get("addr:housenumber")
	street, hasStreet := rec.get("addr:street")

	switch {
	case hasNum && hasStreet:
		s := num + " " + street
		return &s
	case hasStreet:
		return &street
	}
	if name, ok := rec.get("addr:housename"); ok {
		return &name
	}
	return nil
}
