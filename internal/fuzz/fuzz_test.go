package fuzz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	assert.Equal(t, 100.0, Ratio("MACY", "MACY"))
	assert.Equal(t, 100.0, Ratio("", ""))
	assert.Equal(t, 0.0, Ratio("ABC", ""))
	assert.InDelta(t, 94.1176, Ratio("STARBUCKS", "STARBUCK"), 0.001)
	assert.InDelta(t, 96.5517, Ratio("this is a test", "this is a test!"), 0.001)
	assert.InDelta(t, 100.0, Ratio("CAFÉ", "CAFÉ"), 0)
}

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"substring", "ABC", "XXABCXX", 100},
		{"prefix of longer", "STARBUCKS", "STARBUCKS COFFEE", 100},
		{"trailing punctuation", "this is a test", "this is a test!", 100},
		{"argument order", "STARBUCKS COFFEE", "STARBUCKS", 100},
		{"both empty", "", "", 100},
		{"one empty", "", "ABC", 0},
		{"disjoint", "ABC", "XYZ", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PartialRatio(tt.a, tt.b), 0.001)
		})
	}
}

func TestTokenSortRatio(t *testing.T) {
	assert.Equal(t, 100.0, TokenSortRatio("fuzzy wuzzy was a bear", "wuzzy fuzzy was a bear"))
	assert.Equal(t, 100.0, TokenSortRatio("HOME DEPOT", "DEPOT  HOME"))
}

func TestTokenSetRatio(t *testing.T) {
	assert.Equal(t, 100.0, TokenSetRatio("fuzzy was a bear", "fuzzy fuzzy was a bear"))
	assert.Equal(t, 100.0, TokenSetRatio("MACY DOWNTOWN", "MACY"))
	assert.Equal(t, 0.0, TokenSetRatio("", "MACY"))
	assert.InDelta(t, 66.6667, TokenSetRatio("A B", "A C"), 0.001)
}

func TestPartialTokenRatio(t *testing.T) {
	assert.Equal(t, 100.0, PartialTokenRatio("AB CD", "CD EF"))
	assert.Equal(t, 100.0, PartialTokenRatio("WALGREENS", "WALGREENS PHARMACY"))
	assert.Equal(t, 0.0, PartialTokenRatio("ABC", "XYZ"))
}

func TestWRatio(t *testing.T) {
	assert.InDelta(t, 85.5, WRatio("this is a test", "this is a new test!!!"), 0.001)
	assert.Equal(t, 100.0, WRatio("MACY", "MACY"))
	assert.Equal(t, 0.0, WRatio("", "MACY"))
	assert.Equal(t, 0.0, WRatio("MACY", ""))
}

func TestCombined(t *testing.T) {
	bd := Combined("MACY DOWNTOWN", "MACY")
	assert.Equal(t, 100.0, bd.TokenSet)
	assert.Equal(t, 100.0, bd.Max)
	assert.Equal(t, bd.Max, Score("MACY DOWNTOWN", "MACY"))

	bd = Combined("STARBUCKS", "DUNKIN")
	assert.Less(t, bd.Max, 50.0)
	assert.Equal(t, max(bd.WRatio, bd.Partial, bd.TokenSort, bd.TokenSet), bd.Max)
}

func TestScoresStayInRange(t *testing.T) {
	names := []string{"", "A", "MACY", "MACY DOWNTOWN", "HOME DEPOT", "THE HOME DEPOT INC", "7 ELEVEN", "CAFE DU MONDE", "X Y Z X Y Z"}
	for _, a := range names {
		for _, b := range names {
			bd := Combined(a, b)
			for _, v := range []float64{bd.WRatio, bd.Partial, bd.TokenSort, bd.TokenSet, bd.Max} {
				assert.GreaterOrEqual(t, v, 0.0, "%q vs %q", a, b)
				assert.LessOrEqual(t, v, 100.0, "%q vs %q", a, b)
			}
		}
	}
}
