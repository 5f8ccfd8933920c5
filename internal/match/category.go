package match

import (
	"context"
	"fmt"
	"strings"

	"github.com/poi-xref/internal/batch"
	"github.com/poi-xref/internal/embeddings"
)

// DefaultEmbedBatchSize is the number of texts sent to the encoder per call.
const DefaultEmbedBatchSize = 256

// ScoreCategories sets CategorySimilarity to the cosine similarity between
// the embeddings of a matched row's category and its matched category.
// Rows without a match, or where either category is missing or blank, get
// nil. A nil encoder leaves every similarity nil.
func ScoreCategories(ctx context.Context, rows Enriched, enc embeddings.Encoder, batchSize int) (Enriched, error) {
	out := make(Enriched, len(rows))
	var eligible []int
	for i, row := range rows {
		row.CategorySimilarity = nil
		out[i] = row
		if row.MatchedID != nil && strings.TrimSpace(*row.MatchedID) != "" {
			eligible = append(eligible, i)
		}
	}
	if enc == nil || len(eligible) == 0 {
		return out, nil
	}
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}

	// The missing mask is taken from the original values; encoding below
	// sees "" in their place.
	missing := make([]bool, len(eligible))
	refTexts := make([]string, len(eligible))
	cmpTexts := make([]string, len(eligible))
	for k, i := range eligible {
		ref, cmp := rows[i].Category, rows[i].MatchedCategory
		missing[k] = isBlank(ref) || isBlank(cmp)
		refTexts[k] = valueOrEmpty(ref)
		cmpTexts[k] = valueOrEmpty(cmp)
	}

	refVecs, err := encodeInBatches(ctx, enc, refTexts, batchSize)
	if err != nil {
		return nil, fmt.Errorf("encode reference categories: %w", err)
	}
	cmpVecs, err := encodeInBatches(ctx, enc, cmpTexts, batchSize)
	if err != nil {
		return nil, fmt.Errorf("encode matched categories: %w", err)
	}

	for k, i := range eligible {
		if missing[k] {
			continue
		}
		sim := embeddings.Cosine(refVecs[k], cmpVecs[k])
		out[i].CategorySimilarity = &sim
	}
	return out, nil
}

func encodeInBatches(ctx context.Context, enc embeddings.Encoder, texts []string, size int) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, r := range batch.Ranges(len(texts), size) {
		vecs, err := enc.EncodeBatch(ctx, texts[r[0]:r[1]])
		if err != nil {
			return nil, err
		}
		if len(vecs) != r[1]-r[0] {
			return nil, fmt.Errorf("encoder %s returned %d vectors for %d texts", enc.ModelID(), len(vecs), r[1]-r[0])
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
