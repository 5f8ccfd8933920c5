package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultNonPrimaryTokens are generic business-type words that carry little
// signal when telling two places apart.
var DefaultNonPrimaryTokens = []string{
	"THE", "AND", "OF", "AT",
	"INC", "LLC", "LLP", "LTD", "CO", "CORP", "CORPORATION", "COMPANY", "GROUP",
	"STORE", "STORES", "SHOP", "MARKET", "CENTER", "CENTRE",
	"RESTAURANT", "CAFE", "BAR", "GRILL", "KITCHEN",
	"SERVICE", "SERVICES",
}

var (
	reParenthesized = regexp.MustCompile(`\([^)]*\)`)
	rePossessive    = regexp.MustCompile(`\b'S\b`)
	reBareS         = regexp.MustCompile(`\bS\b`)
	rePunctuation   = regexp.MustCompile(`[^\w\s]`)
)

// Policy configures a Normalizer.
type Policy struct {
	// NonPrimary holds the upper-case tokens Primary drops.
	NonPrimary map[string]struct{}
	// StripPossessive removes 'S and lone S words (MACY'S -> MACY).
	StripPossessive bool
}

// Normalizer canonicalizes names and addresses. The zero value cleans text
// without the possessive rule and has an empty exclusion set.
type Normalizer struct {
	policy Policy
}

// New creates a normalizer for the given policy.
func New(policy Policy) *Normalizer {
	if policy.NonPrimary == nil {
		policy.NonPrimary = map[string]struct{}{}
	}
	return &Normalizer{policy: policy}
}

// NewNameNormalizer builds the policy used for POI names. A nil token list
// selects DefaultNonPrimaryTokens.
func NewNameNormalizer(nonPrimary []string) *Normalizer {
	if nonPrimary == nil {
		nonPrimary = DefaultNonPrimaryTokens
	}
	return New(Policy{NonPrimary: TokenSet(nonPrimary), StripPossessive: true})
}

// NewAddressNormalizer builds the policy used for street addresses: no
// possessive rule and nothing excluded, so house numbers and street tokens
// survive.
func NewAddressNormalizer() *Normalizer {
	return New(Policy{})
}

// TokenSet upper-cases and trims tokens into a lookup set.
func TokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

// Clean returns the comparable form of text: accents stripped, upper case,
// parenthesized parts removed, punctuation turned into single spaces.
func (n *Normalizer) Clean(text string) string {
	if text == "" {
		return ""
	}

	stripMarks := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	s, _, err := transform.String(stripMarks, text)
	if err != nil {
		s = text
	}
	s = strings.ToUpper(s)
	s = reParenthesized.ReplaceAllString(s, "")

	if n != nil && n.policy.StripPossessive {
		s = rePossessive.ReplaceAllString(s, "")
		s = reBareS.ReplaceAllString(s, "")
	}

	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	s = rePunctuation.ReplaceAllString(s, " ")

	return strings.Join(strings.Fields(s), " ")
}

// CleanValue is Clean for nullable text; nil yields "".
func (n *Normalizer) CleanValue(text *string) string {
	if text == nil {
		return ""
	}
	return n.Clean(*text)
}

// Primary removes non-primary tokens from already normalized text. A lone
// survivor shorter than three characters is not trusted and the input is
// returned unchanged, as it is when nothing survives.
func (n *Normalizer) Primary(normalized string) string {
	tokens := strings.Fields(normalized)
	core := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if n != nil {
			if _, skip := n.policy.NonPrimary[t]; skip {
				continue
			}
		}
		core = append(core, t)
	}

	if len(core) == 1 && len(core[0]) < 3 {
		return normalized
	}
	if len(core) > 0 {
		return strings.Join(core, " ")
	}
	return normalized
}

// Key is the string names are scored on: Primary(CleanValue(text)).
func (n *Normalizer) Key(text *string) string {
	return n.Primary(n.CleanValue(text))
}
