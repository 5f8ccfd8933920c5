package match

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poi-xref/internal/config"
	"github.com/poi-xref/internal/embeddings"
	"github.com/poi-xref/internal/fuzz"
	"github.com/poi-xref/internal/normalize"
	"github.com/poi-xref/internal/spatial"
)

func poi(id string, x, y float64, name, category, address *string) POI {
	return POI{ID: id, Location: orb.Point{x, y}, Name: name, Category: category, Address: address}
}

func s(v string) *string { return &v }

func planar(maxDist float64) spatial.Options {
	return spatial.Options{K: 100, MaxDistance: maxDist, Projector: spatial.Planar}
}

func run(ref, cmp []POI, maxDist float64) Enriched {
	rows := FindCandidates(ref, cmp, planar(maxDist))
	return MatchByName(false, rows, cmp, DefaultNameOptions())
}

func TestMatch_PossessiveAndParentheses(t *testing.T) {
	ref := []POI{poi("r1", 0, 0, s("Macy's (Downtown)"), nil, nil)}
	cmp := []POI{poi("c1", 10, 0, s("MACY'S"), s("department_store"), nil)}

	rows := run(ref, cmp, 1000)
	require.Len(t, rows, 1)
	r := rows[0]
	require.True(t, r.Matched())
	assert.Equal(t, "c1", *r.MatchedID)
	assert.GreaterOrEqual(t, *r.NameScore, 90.0)
	assert.Equal(t, 10.0, *r.LocationDistance)
	assert.Equal(t, "MACY'S", *r.MatchedName)
	assert.Equal(t, "department_store", *r.MatchedCategory)

	// The branch label kept in the query still scores high.
	assert.GreaterOrEqual(t, fuzz.Score("MACY DOWNTOWN", "MACY"), 90.0)
}

func TestMatch_NullNameIsNotAttempted(t *testing.T) {
	ref := []POI{poi("r1", 0, 0, nil, nil, nil), poi("r2", 0, 0, s("!!!"), nil, nil)}
	cmp := []POI{poi("c1", 5, 0, s("Starbucks"), nil, nil)}

	for _, r := range run(ref, cmp, 1000) {
		assert.NotEmpty(t, r.Candidates)
		assert.False(t, r.Matched())
		assert.Nil(t, r.NameScore)
		assert.Nil(t, r.LocationDistance)
		assert.Nil(t, r.MatchedName)
		assert.Nil(t, r.MatchedCategory)
	}
}

func TestMatch_TiePrefersNearest(t *testing.T) {
	ref := []POI{poi("r1", 0, 0, s("Starbucks"), nil, nil)}
	cmp := []POI{
		poi("far", 52, 0, s("STARBUCKS"), nil, nil),
		poi("near", 0, 50, s("Starbucks"), nil, nil),
	}

	r := run(ref, cmp, 1000)[0]
	require.Len(t, r.Candidates, 2)
	assert.Equal(t, "near", r.Candidates[0].ID)
	require.True(t, r.Matched())
	assert.Equal(t, "near", *r.MatchedID)
	assert.Equal(t, 50.0, *r.LocationDistance)
}

func TestMatch_InclusiveDistanceBoundary(t *testing.T) {
	ref := []POI{poi("r1", 0, 0, s("Target"), nil, nil)}
	cmp := []POI{
		poi("edge", 1000, 0, s("Target"), nil, nil),
		poi("outside", 1000.01, 0, s("Target"), nil, nil),
	}

	r := run(ref, cmp, 1000)[0]
	require.Len(t, r.Candidates, 1)
	assert.Equal(t, Candidate{ID: "edge", Distance: 1000}, r.Candidates[0])
	assert.Equal(t, "edge", *r.MatchedID)
}

func TestMatch_BelowThresholdKeepsScore(t *testing.T) {
	ref := []POI{poi("r1", 0, 0, s("Starbucks"), nil, nil)}
	cmp := []POI{poi("c1", 5, 0, s("Dunkin"), s("cafe"), nil)}

	r := run(ref, cmp, 1000)[0]
	assert.False(t, r.Matched())
	require.NotNil(t, r.NameScore)
	assert.Less(t, *r.NameScore, DefaultNameThreshold)
	assert.Nil(t, r.MatchedCategory)
	assert.Nil(t, r.LocationDistance)
	require.NotNil(t, r.NameBreakdown)
	assert.Equal(t, *r.NameScore, r.NameBreakdown.Max)
}

func TestMatch_NoCandidates(t *testing.T) {
	ref := []POI{poi("r1", 0, 0, s("Starbucks"), nil, nil)}

	rows := run(ref, nil, 1000)
	require.Len(t, rows, 1)
	assert.NotNil(t, rows[0].Candidates)
	assert.Empty(t, rows[0].Candidates)
	assert.Nil(t, rows[0].NameScore)

	far := []POI{poi("c1", 5000, 0, s("Starbucks"), nil, nil)}
	rows = run(ref, far, 1000)
	assert.Empty(t, rows[0].Candidates)
	assert.Nil(t, rows[0].NameScore)
}

func TestMatch_TargetsAreShared(t *testing.T) {
	ref := []POI{
		poi("r1", 0, 0, s("Home Depot"), nil, nil),
		poi("r2", 20, 0, s("The Home Depot, Inc."), nil, nil),
	}
	cmp := []POI{poi("c1", 10, 0, s("HOME DEPOT"), nil, nil)}

	rows := run(ref, cmp, 1000)
	for _, r := range rows {
		require.True(t, r.Matched(), r.ID)
		assert.Equal(t, "c1", *r.MatchedID)
	}
}

func TestMatch_ThresholdOption(t *testing.T) {
	ref := []POI{poi("r1", 0, 0, s("Starbucks"), nil, nil)}
	cmp := []POI{poi("c1", 5, 0, s("Starbucks Reserve Roastery"), nil, nil)}
	rows := FindCandidates(ref, cmp, planar(100))

	strict := MatchByName(false, rows, cmp, NameOptions{Threshold: 100.5})
	assert.False(t, strict[0].Matched())
	assert.NotNil(t, strict[0].NameScore)

	loose := MatchByName(false, rows, cmp, NameOptions{Threshold: 0})
	assert.True(t, loose[0].Matched())
}

func TestMatch_CustomPolicy(t *testing.T) {
	ref := []POI{poi("r1", 0, 0, s("Blue Bottle Coffee"), nil, nil)}
	cmp := []POI{poi("c1", 5, 0, s("Blue Bottle"), nil, nil)}
	rows := FindCandidates(ref, cmp, planar(100))

	n := normalize.NewNameNormalizer([]string{"COFFEE"})
	out := MatchByName(false, rows, cmp, NameOptions{Threshold: 80, Normalizer: n})
	require.True(t, out[0].Matched())
	assert.Equal(t, 100.0, *out[0].NameScore)
}

func TestMatch_DoesNotMutateInput(t *testing.T) {
	ref := []POI{poi("r1", 0, 0, s("Starbucks"), s("cafe"), s("1 Main St"))}
	cmp := []POI{poi("c1", 5, 0, s("Starbucks"), s("coffee"), s("1 Main Street"))}

	rows := FindCandidates(ref, cmp, planar(100))
	named := MatchByName(false, rows, cmp, DefaultNameOptions())
	addressed := ScoreAddresses(named, cmp, nil)
	_, err := ScoreCategories(context.Background(), addressed, embeddings.NewHashEncoder(64), 8)
	require.NoError(t, err)

	assert.Nil(t, rows[0].NameScore)
	assert.True(t, named[0].Matched())
	assert.Nil(t, named[0].AddressScore)
	assert.NotNil(t, addressed[0].AddressScore)
	assert.Nil(t, addressed[0].CategorySimilarity)
}

// Randomized check of the row-level invariants.
func TestMatch_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	vocab := []string{"STARBUCKS", "DUNKIN", "HOME DEPOT", "TARGET", "MACY'S", "CVS", "WALGREENS", "SUBWAY", "THE UPS STORE", "JOE'S PIZZA"}

	var ref, cmp []POI
	for i := 0; i < 150; i++ {
		var name *string
		if rng.Intn(10) > 0 {
			name = s(vocab[rng.Intn(len(vocab))])
		}
		ref = append(ref, poi(fmt.Sprintf("r%d", i), rng.Float64()*3000, rng.Float64()*3000, name, nil, nil))
	}
	for i := 0; i < 300; i++ {
		name := vocab[rng.Intn(len(vocab))] + []string{"", " #2", " EXPRESS", " (MALL)"}[rng.Intn(4)]
		cmp = append(cmp, poi(fmt.Sprintf("c%d", i), rng.Float64()*3000, rng.Float64()*3000, s(name), nil, nil))
	}

	const maxDist, k = 250.0, 5
	rows := FindCandidates(ref, cmp, spatial.Options{K: k, MaxDistance: maxDist, Projector: spatial.Planar, Workers: 4})
	rows = MatchByName(false, rows, cmp, NameOptions{Threshold: 80, Workers: 3})

	n := normalize.NewNameNormalizer(nil)
	keys := map[string]string{}
	for _, c := range cmp {
		keys[c.ID] = n.Key(c.Name)
	}

	require.Len(t, rows, len(ref))
	for i, r := range rows {
		assert.Equal(t, ref[i].ID, r.ID, "order preserved")
		assert.LessOrEqual(t, len(r.Candidates), k)

		seen := map[string]bool{}
		for j, c := range r.Candidates {
			assert.LessOrEqual(t, c.Distance, maxDist)
			assert.False(t, seen[c.ID], "duplicate candidate")
			seen[c.ID] = true
			if j > 0 {
				assert.LessOrEqual(t, r.Candidates[j-1].Distance, c.Distance)
			}
		}

		attempted := len(r.Candidates) > 0 && n.Key(r.Name) != ""
		assert.Equal(t, attempted, r.NameScore != nil, r.ID)
		assert.Equal(t, r.NameScore != nil && *r.NameScore >= 80, r.Matched(), r.ID)

		if r.NameScore == nil {
			continue
		}
		query := n.Key(r.Name)
		best := 0.0
		for _, c := range r.Candidates {
			best = max(best, fuzz.Score(query, keys[c.ID]))
		}
		assert.Equal(t, best, *r.NameScore, r.ID)
		if r.Matched() {
			assert.Equal(t, fuzz.Score(query, keys[*r.MatchedID]), *r.NameScore)
		}
	}
}

func TestScoreAddresses(t *testing.T) {
	cmp := []POI{
		poi("c1", 0, 0, s("A"), nil, s("123 Main Street")),
		poi("c2", 0, 0, s("B"), nil, nil),
		poi("c3", 0, 0, s("C"), nil, s("9 Elm Ave.")),
	}
	rows := Enriched{
		{POI: POI{ID: "r1", Address: s("123 Main St.")}, MatchResult: MatchResult{MatchedID: s("c1")}},
		{POI: POI{ID: "r2", Address: s("5 Oak Rd")}, MatchResult: MatchResult{MatchedID: s("c2")}},
		{POI: POI{ID: "r3", Address: nil}, MatchResult: MatchResult{MatchedID: s("c3")}},
		{POI: POI{ID: "r4", Address: s("123 Main St.")}},
	}

	out := ScoreAddresses(rows, cmp, normalize.NewAddressNormalizer())

	require.NotNil(t, out[0].AddressScore)
	assert.Equal(t, int(fuzz.Score("123 MAIN ST", "123 MAIN STREET")), *out[0].AddressScore)
	assert.GreaterOrEqual(t, *out[0].AddressScore, 90)
	assert.Equal(t, "123 MAIN STREET", *out[0].MatchedAddress)

	assert.Nil(t, out[1].AddressScore)
	assert.Nil(t, out[1].MatchedAddress)

	assert.Nil(t, out[2].AddressScore)
	require.NotNil(t, out[2].MatchedAddress)
	assert.Equal(t, "9 ELM AVE", *out[2].MatchedAddress)

	assert.Nil(t, out[3].AddressScore)
	assert.Nil(t, out[3].MatchedAddress)
}

func TestScoreCategories(t *testing.T) {
	rows := Enriched{
		{POI: POI{ID: "r1", Category: s("coffee shop")}, MatchResult: MatchResult{MatchedID: s("c1"), MatchedCategory: s("Coffee Shop")}},
		{POI: POI{ID: "r2", Category: s("bakery")}, MatchResult: MatchResult{MatchedID: s("c2"), MatchedCategory: s("")}},
		{POI: POI{ID: "r3", Category: nil}, MatchResult: MatchResult{MatchedID: s("c3"), MatchedCategory: s("bar")}},
		{POI: POI{ID: "r4", Category: s("bar")}, MatchResult: MatchResult{MatchedCategory: s("bar")}},
		{POI: POI{ID: "r5", Category: s("   ")}, MatchResult: MatchResult{MatchedID: s("c5"), MatchedCategory: s("  ")}},
		{POI: POI{ID: "r6", Category: s("museum")}, MatchResult: MatchResult{MatchedID: s("c6"), MatchedCategory: s("hardware store")}},
	}
	enc := embeddings.NewHashEncoder(128)

	out, err := ScoreCategories(context.Background(), rows, enc, 256)
	require.NoError(t, err)

	require.NotNil(t, out[0].CategorySimilarity)
	assert.InDelta(t, 1.0, *out[0].CategorySimilarity, 1e-6)
	assert.Nil(t, out[1].CategorySimilarity, "empty matched category")
	assert.Nil(t, out[2].CategorySimilarity, "missing reference category")
	assert.Nil(t, out[3].CategorySimilarity, "unmatched row")
	assert.Nil(t, out[4].CategorySimilarity, "blank on both sides")
	require.NotNil(t, out[5].CategorySimilarity)
	assert.Less(t, *out[5].CategorySimilarity, 0.9)

	perRow, err := ScoreCategories(context.Background(), rows, enc, 1)
	require.NoError(t, err)
	for i := range out {
		assert.Equal(t, out[i].CategorySimilarity, perRow[i].CategorySimilarity)
	}

	none, err := ScoreCategories(context.Background(), rows, nil, 256)
	require.NoError(t, err)
	for _, r := range none {
		assert.Nil(t, r.CategorySimilarity)
	}
}

func TestPipeline_Run(t *testing.T) {
	cfg := config.DefaultMatchConfig()
	cfg.Projection = spatial.ProjectionPlanar
	cfg.MaxDistance = 100
	cfg.Workers = 2

	ref := Collection{Source: "google", POIs: []POI{
		poi("g1", 0, 0, s("Macy's (Downtown)"), s("department store"), s("151 W 34th St")),
		poi("g2", 500, 500, s("Joe's Pizza"), s("pizza restaurant"), nil),
		poi("g3", 2000, 2000, s("Lonely Diner"), s("diner"), nil),
		poi("g4", 900, 0, nil, s("bank"), nil),
	}}
	cmp := Collection{Source: "overture", POIs: []POI{
		poi("o1", 20, 0, s("Macy's"), s("department store"), s("151 West 34th Street")),
		poi("o2", 510, 500, s("Burger Palace"), s("restaurant"), nil),
		poi("o3", 905, 0, s("Chase Bank"), s("bank"), nil),
	}}

	p := NewPipeline(PipelineConfig{Match: cfg, Encoder: embeddings.NewHashEncoder(64), Logger: zerolog.Nop()})
	rows, summary, err := p.Run(context.Background(), ref, cmp)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "o1", *rows[0].MatchedID)
	require.NotNil(t, rows[0].AddressScore)
	require.NotNil(t, rows[0].CategorySimilarity)
	assert.InDelta(t, 1.0, *rows[0].CategorySimilarity, 1e-6)

	assert.False(t, rows[1].Matched())
	assert.NotNil(t, rows[1].NameScore)
	assert.Nil(t, rows[1].CategorySimilarity)

	assert.Empty(t, rows[2].Candidates)
	assert.Nil(t, rows[3].NameScore)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 4, summary.ReferenceRows)
	assert.Equal(t, 3, summary.ComparisonRows)
	assert.Equal(t, 1, summary.Matched)
	assert.Equal(t, 1, summary.BelowThreshold)
	assert.Equal(t, 2, summary.NotAttempted)
	assert.Equal(t, 3, summary.WithCandidates)
	assert.Equal(t, 1, summary.CategoryScored)
	assert.InDelta(t, 0.25, summary.MatchRate(), 1e-9)
}

func TestPipeline_BadProjection(t *testing.T) {
	cfg := config.DefaultMatchConfig()
	cfg.Projection = "utm"
	_, _, err := NewPipeline(PipelineConfig{Match: cfg, Logger: zerolog.Nop()}).Run(context.Background(), Collection{}, Collection{})
	assert.Error(t, err)
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewPipeline(PipelineConfig{Match: config.DefaultMatchConfig(), Logger: zerolog.Nop()}).
		Run(ctx, Collection{}, Collection{})
	assert.ErrorIs(t, err, context.Canceled)
}
