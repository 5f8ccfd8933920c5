package fuzz

import "strings"

// PartialRatio is the best Ratio between the shorter string and any
// equally long window of the longer one (plus the head and tail windows
// that overhang the longer string's ends).
func PartialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 100
	}

	shorter, longer := ra, rb
	if len(ra) > len(rb) {
		shorter, longer = rb, ra
	}

	score := partialShortNeedle(shorter, longer)
	if score != 100 && len(ra) == len(rb) {
		score = max(score, partialShortNeedle(longer, shorter))
	}
	return score
}

// partialShortNeedle assumes len(needle) <= len(hay). Windows whose edge
// rune never occurs in needle cannot improve the alignment and are skipped.
func partialShortNeedle(needle, hay []rune) float64 {
	chars := make(map[rune]struct{}, len(needle))
	for _, r := range needle {
		chars[r] = struct{}{}
	}
	n, h := len(needle), len(hay)
	if n == 0 {
		return 0
	}
	s1 := string(needle)

	best := 0.0
	consider := func(window []rune) bool {
		if r := Ratio(s1, string(window)); r > best {
			best = r
		}
		return best == 100
	}

	for i := 1; i < n; i++ {
		if _, ok := chars[hay[i-1]]; !ok {
			continue
		}
		if consider(hay[:i]) {
			return 100
		}
	}
	for i := 0; i < h-n; i++ {
		if _, ok := chars[hay[i+n-1]]; !ok {
			continue
		}
		if consider(hay[i : i+n]) {
			return 100
		}
	}
	for i := h - n; i < h; i++ {
		if _, ok := chars[hay[i]]; !ok {
			continue
		}
		if consider(hay[i:]) {
			return 100
		}
	}
	return best
}

// PartialTokenRatio is PartialRatio over sorted tokens. Any shared token
// short-circuits to 100.
func PartialTokenRatio(a, b string) float64 {
	splitA, splitB := strings.Fields(a), strings.Fields(b)
	setA, setB := tokenSet(a), tokenSet(b)

	intersect, diffAB, diffBA := splitSets(setA, setB)
	if len(intersect) > 0 {
		return 100
	}

	result := PartialRatio(sortedJoin(splitA), sortedJoin(splitB))
	if len(splitA) == len(diffAB) && len(splitB) == len(diffBA) {
		return result
	}
	return max(result, PartialRatio(sortedJoin(diffAB), sortedJoin(diffBA)))
}

// WRatio weights the other ratios by how different the string lengths are:
// close lengths favor token comparisons, very uneven ones favor partial
// (substring) comparisons at a discount.
func WRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	const unbaseScale = 0.95

	la, lb := float64(runeLen(a)), float64(runeLen(b))
	lenRatio := la / lb
	if lb > la {
		lenRatio = lb / la
	}

	end := Ratio(a, b)
	if lenRatio < 1.5 {
		tokenRatio := max(TokenSetRatio(a, b), TokenSortRatio(a, b))
		return max(end, tokenRatio*unbaseScale)
	}

	partialScale := 0.9
	if lenRatio >= 8 {
		partialScale = 0.6
	}
	end = max(end, PartialRatio(a, b)*partialScale)
	return max(end, PartialTokenRatio(a, b)*unbaseScale*partialScale)
}
