package fuzz

// Breakdown holds every ratio computed for a pair plus their maximum.
type Breakdown struct {
	WRatio    float64 `json:"wratio"`
	Partial   float64 `json:"partial_ratio"`
	TokenSort float64 `json:"token_sort_ratio"`
	TokenSet  float64 `json:"token_set_ratio"`
	Max       float64 `json:"score"`
}

// Combined scores a pair with the weighted, partial, token-sort and
// token-set ratios and keeps the best.
func Combined(a, b string) Breakdown {
	bd := Breakdown{
		WRatio:    WRatio(a, b),
		Partial:   PartialRatio(a, b),
		TokenSort: TokenSortRatio(a, b),
		TokenSet:  TokenSetRatio(a, b),
	}
	bd.Max = max(bd.WRatio, bd.Partial, bd.TokenSort, bd.TokenSet)
	return bd
}

// Score is Combined(a, b).Max.
func Score(a, b string) float64 {
	return Combined(a, b).Max
}
