// Package fuzz implements the string similarity ratios used to compare POI
// names and addresses. Scores are on a 0..100 scale and follow the Indel
// (insert/delete only) normalization, so "ratio" is 2*LCS/(len(a)+len(b)).
package fuzz

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Ratio is the normalized Indel similarity of a and b.
func Ratio(a, b string) float64 {
	lensum := runeLen(a) + runeLen(b)
	if lensum == 0 {
		return 100
	}
	return normDistance(indelDistance(a, b), lensum)
}

// TokenSortRatio compares the strings after sorting their whitespace
// separated tokens, making word order irrelevant.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedJoin(strings.Fields(a)), sortedJoin(strings.Fields(b)))
}

// TokenSetRatio compares the shared tokens against each side's leftovers, so
// duplicated or extra words do not lower the score. Returns 100 as soon as
// one token set contains the other.
func TokenSetRatio(a, b string) float64 {
	tokensA, tokensB := tokenSet(a), tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	intersect, diffAB, diffBA := splitSets(tokensA, tokensB)
	if len(intersect) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 100
	}

	diffABJoined := sortedJoin(diffAB)
	diffBAJoined := sortedJoin(diffBA)
	abLen := runeLen(diffABJoined)
	baLen := runeLen(diffBAJoined)
	sectLen := runeLen(sortedJoin(intersect))

	sep := 0
	if sectLen != 0 {
		sep = 1
	}
	sectABLen := sectLen + sep + abLen
	sectBALen := sectLen + sep + baLen

	result := normDistance(indelDistance(diffABJoined, diffBAJoined), sectABLen+sectBALen)
	if sectLen == 0 {
		return result
	}

	// sect+ab vs sect (and sect+ba vs sect) only differ by the leftover
	// tokens, so their distance is the length difference.
	sectABRatio := normDistance(sep+abLen, sectLen+sectABLen)
	sectBARatio := normDistance(sep+baLen, sectLen+sectBALen)

	return max(result, sectABRatio, sectBARatio)
}

func indelDistance(a, b string) int {
	return runeLen(a) + runeLen(b) - 2*edlib.LCS(a, b)
}

func normDistance(dist, lensum int) float64 {
	if lensum == 0 {
		return 100
	}
	return (1 - float64(dist)/float64(lensum)) * 100
}

func runeLen(s string) int {
	return len([]rune(s))
}

func sortedJoin(tokens []string) string {
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		set[t] = struct{}{}
	}
	return set
}

func splitSets(a, b map[string]struct{}) (intersect, onlyA, onlyB []string) {
	for t := range a {
		if _, ok := b[t]; ok {
			intersect = append(intersect, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range b {
		if _, ok := a[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	return intersect, onlyA, onlyB
}
