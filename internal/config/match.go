package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
)

// MatchConfig holds every tunable of a matching run.
type MatchConfig struct {
	K             int     `json:"k"`
	MaxDistance   float64 `json:"max_distance_m"`
	NameThreshold float64 `json:"name_threshold"`
	Projection    string  `json:"projection"` // local | epsg3857 | planar
	Workers       int     `json:"workers"`

	// NonPrimaryTokens replaces the default filler set when non-empty.
	NonPrimaryTokens []string `json:"non_primary_tokens,omitempty"`

	Embedder EmbedderConfig `json:"embedder"`
}

// EmbedderConfig selects and locates the category encoder.
type EmbedderConfig struct {
	Kind          string `json:"kind"` // ort | hash | none
	OrtLibrary    string `json:"ort_library"`
	ModelPath     string `json:"model_path"`
	TokenizerPath string `json:"tokenizer_path"`
	ModelID       string `json:"model_id"`
	MaxSeqLen     int    `json:"max_seq_len"`
	HiddenSize    int    `json:"hidden_size"`
	BatchSize     int    `json:"batch_size"`
	Device        string `json:"device"` // cpu | cuda | coreml
	CacheDir      string `json:"cache_dir"`
}

// DefaultMatchConfig mirrors the parameters the matcher was calibrated with.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		K:             100,
		MaxDistance:   1000,
		NameThreshold: 80,
		Projection:    "local",
		Workers:       runtime.NumCPU(),
		Embedder: EmbedderConfig{
			Kind:       "hash",
			ModelID:    "all-MiniLM-L6-v2",
			MaxSeqLen:  128,
			HiddenSize: 384,
			BatchSize:  256,
			Device:     "cpu",
		},
	}
}

// LoadMatchConfig reads a JSON file (optional) on top of the defaults and
// then applies environment overrides.
func LoadMatchConfig(path string) (MatchConfig, error) {
	cfg := DefaultMatchConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read match config: %w", err)
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("decode match config %s: %w", path, err)
			}
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from POI_* / ORT_* variables.
func (c *MatchConfig) ApplyEnv() {
	c.K = GetEnvInt("POI_K", c.K)
	c.MaxDistance = GetEnvFloat("POI_MAX_DIST", c.MaxDistance)
	c.NameThreshold = GetEnvFloat("POI_NAME_THRESHOLD", c.NameThreshold)
	c.Projection = GetEnv("POI_PROJECTION", c.Projection)
	c.Workers = GetEnvInt("POI_WORKERS", c.Workers)
	c.NonPrimaryTokens = GetEnvList("POI_NON_PRIMARY_TOKENS", c.NonPrimaryTokens)

	c.Embedder.Kind = GetEnv("POI_EMBEDDER", c.Embedder.Kind)
	c.Embedder.BatchSize = GetEnvInt("POI_EMBED_BATCH", c.Embedder.BatchSize)
	c.Embedder.OrtLibrary = GetEnv("ORT_LIB", c.Embedder.OrtLibrary)
	c.Embedder.ModelPath = GetEnv("ORT_MODEL", c.Embedder.ModelPath)
	c.Embedder.TokenizerPath = GetEnv("ORT_TOKENIZER", c.Embedder.TokenizerPath)
	c.Embedder.Device = GetEnv("ORT_DEVICE", c.Embedder.Device)
	c.Embedder.CacheDir = GetEnv("POI_VECTOR_CACHE", c.Embedder.CacheDir)
}

// Validate rejects configurations the pipeline cannot run with.
func (c MatchConfig) Validate() error {
	if c.K <= 0 {
		return fmt.Errorf("invalid config: k must be positive, got %d", c.K)
	}
	if c.MaxDistance < 0 {
		return fmt.Errorf("invalid config: max distance must not be negative, got %g", c.MaxDistance)
	}
	if c.NameThreshold < 0 || c.NameThreshold > 100 {
		return fmt.Errorf("invalid config: name threshold must be within 0..100, got %g", c.NameThreshold)
	}
	switch c.Projection {
	case "local", "epsg3857", "planar":
	default:
		return fmt.Errorf("invalid config: unknown projection %q", c.Projection)
	}
	switch c.Embedder.Kind {
	case "hash", "none":
	case "ort":
		if c.Embedder.ModelPath == "" || c.Embedder.TokenizerPath == "" {
			return errors.New("invalid config: ort embedder needs model_path and tokenizer_path")
		}
	default:
		return fmt.Errorf("invalid config: unknown embedder %q", c.Embedder.Kind)
	}
	if c.Embedder.BatchSize <= 0 {
		return fmt.Errorf("invalid config: embed batch size must be positive, got %d", c.Embedder.BatchSize)
	}
	return nil
}
