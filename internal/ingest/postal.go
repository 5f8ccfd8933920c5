//go:build libpostal

package ingest

import (
	"strings"

	postal "github.com/openvenues/gopostal/parser"
)

// SimplifyAddress reduces a formatted address to "house_number road" using
// libpostal. Returns "" when libpostal finds no road.
func SimplifyAddress(address string) string {
	var house, road string
	for _, c := range postal.ParseAddress(address) {
		switch c.Label {
		case "house_number":
			house = c.Value
		case "road":
			road = c.Value
		}
	}
	if road == "" {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(house + " " + road))
}
