package match

import (
	"github.com/poi-xref/internal/fuzz"
	"github.com/poi-xref/internal/normalize"
)

// ScoreAddresses compares the cleaned address of every matched row with the
// cleaned address of its matched POI. The score is the truncated combined
// fuzzy score, or nil when either side is empty. Unmatched rows get nil
// diagnostics. The cleaned matched address is surfaced whenever non-empty.
func ScoreAddresses(rows Enriched, cmp []POI, n *normalize.Normalizer) Enriched {
	if n == nil {
		n = normalize.NewAddressNormalizer()
	}

	idx := comparisonIndex(cmp)
	cleaned := make(map[string]string, len(idx))

	out := make(Enriched, len(rows))
	for i, row := range rows {
		row.AddressScore = nil
		row.MatchedAddress = nil
		out[i] = row

		if row.MatchedID == nil {
			continue
		}

		matched, ok := cleaned[*row.MatchedID]
		if !ok {
			if j, found := idx[*row.MatchedID]; found {
				matched = n.CleanValue(cmp[j].Address)
			}
			cleaned[*row.MatchedID] = matched
		}
		if matched != "" {
			out[i].MatchedAddress = &matched
		}

		query := n.CleanValue(row.Address)
		if query == "" || matched == "" {
			continue
		}
		score := int(fuzz.Score(query, matched))
		out[i].AddressScore = &score
	}
	return out
}
