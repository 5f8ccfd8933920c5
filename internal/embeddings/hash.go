package embeddings

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
)

// HashEncoder embeds text as a signed, hashed bag of character trigrams. It
// needs no model files, is deterministic, and gives related labels
// ("COFFEE SHOP", "COFFEE") a positive similarity.
type HashEncoder struct {
	dimensions int
}

// NewHashEncoder creates a hash encoder with the given vector size.
func NewHashEncoder(dimensions int) *HashEncoder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &HashEncoder{dimensions: dimensions}
}

// ModelID implements Encoder.
func (h *HashEncoder) ModelID() string {
	return fmt.Sprintf("hash-trigram-%d", h.dimensions)
}

// Close implements Encoder.
func (h *HashEncoder) Close() error { return nil }

// EncodeBatch implements Encoder.
func (h *HashEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.embed(t)
	}
	return out, nil
}

func (h *HashEncoder) embed(text string) []float32 {
	vector := make([]float32, h.dimensions)
	text = strings.ToUpper(strings.TrimSpace(text))
	if text == "" {
		return vector
	}

	for _, token := range strings.Fields(text) {
		padded := []rune("#" + token + "#")
		for i := 0; i+3 <= len(padded); i++ {
			h.add(vector, string(padded[i:i+3]), 1)
		}
		// Whole tokens weigh more than any single trigram.
		h.add(vector, token, 2)
	}

	l2Normalize(vector)
	return vector
}

func (h *HashEncoder) add(vector []float32, feature string, weight float32) {
	f := fnv.New64a()
	_, _ = f.Write([]byte(feature))
	sum := f.Sum64()

	idx := int(sum % uint64(h.dimensions))
	if sum>>63 == 1 {
		weight = -weight
	}
	vector[idx] += weight
}
