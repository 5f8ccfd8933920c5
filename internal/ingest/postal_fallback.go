//go:build !libpostal

package ingest

import (
	"regexp"
	"strings"
)

var reUnitSuffix = regexp.MustCompile(`(?i)\s*(#|suite|ste\.?|unit|apt\.?)\s*[\w-]+$`)

// SimplifyAddress keeps the street line of a formatted address (the part
// before the first comma) without unit designators. Build with the
// libpostal tag for a parser-based version.
func SimplifyAddress(address string) string {
	street, _, _ := strings.Cut(address, ",")
	street = reUnitSuffix.ReplaceAllString(strings.TrimSpace(street), "")
	return strings.ToUpper(strings.TrimSpace(street))
}
