package embeddings

import (
	"fmt"

	"github.com/poi-xref/internal/config"
)

// FromConfig builds the encoder selected by cfg.Kind, wrapped in a
// CachedEncoder. Kind "none" returns a nil Encoder and no error.
func FromConfig(cfg config.EmbedderConfig) (Encoder, error) {
	var inner Encoder
	switch cfg.Kind {
	case "none":
		return nil, nil
	case "hash", "":
		inner = NewHashEncoder(cfg.HiddenSize)
	case "ort":
		enc, err := NewOrtEncoder(OrtConfig{
			LibraryPath:   cfg.OrtLibrary,
			ModelPath:     cfg.ModelPath,
			TokenizerPath: cfg.TokenizerPath,
			ModelID:       cfg.ModelID,
			MaxSeqLen:     cfg.MaxSeqLen,
			HiddenSize:    cfg.HiddenSize,
			Device:        cfg.Device,
		})
		if err != nil {
			return nil, err
		}
		inner = enc
	default:
		return nil, fmt.Errorf("unknown embedder kind %q", cfg.Kind)
	}

	cached, err := NewCachedEncoder(inner, cfg.CacheDir)
	if err != nil {
		_ = inner.Close()
		return nil, err
	}
	return cached, nil
}
