package embeddings

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
)

// CachedEncoder memoizes another encoder's vectors in memory and, when dir
// is set, as little-endian float32 files keyed by sha1(model|text).
type CachedEncoder struct {
	inner Encoder
	dir   string

	mu  sync.RWMutex
	mem map[string][]float32
}

// NewCachedEncoder wraps inner. An empty dir keeps the cache in memory only.
func NewCachedEncoder(inner Encoder, dir string) (*CachedEncoder, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	return &CachedEncoder{inner: inner, dir: dir, mem: make(map[string][]float32)}, nil
}

// ModelID implements Encoder.
func (c *CachedEncoder) ModelID() string { return c.inner.ModelID() }

// Close closes the wrapped encoder and drops the memory cache.
func (c *CachedEncoder) Close() error {
	c.mu.Lock()
	c.mem = make(map[string][]float32)
	c.mu.Unlock()
	return c.inner.Close()
}

// EncodeBatch serves cached vectors and sends only the misses, deduplicated,
// to the wrapped encoder in a single call.
func (c *CachedEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))

	var missing []string
	pending := make(map[string][]int)
	for i, t := range texts {
		key := c.cacheKey(t)
		keys[i] = key
		if vec, ok := c.lookup(key); ok {
			out[i] = vec
			continue
		}
		if _, seen := pending[key]; !seen {
			missing = append(missing, t)
		}
		pending[key] = append(pending[key], i)
	}

	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := c.inner.EncodeBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, fmt.Errorf("encoder %s returned %d vectors for %d texts", c.ModelID(), len(vecs), len(missing))
	}

	for j, t := range missing {
		key := c.cacheKey(t)
		c.store(key, vecs[j])
		for _, i := range pending[key] {
			out[i] = cloneVector(vecs[j])
		}
	}
	return out, nil
}

func (c *CachedEncoder) cacheKey(text string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, c.inner.ModelID())
	_, _ = io.WriteString(h, "|")
	_, _ = io.WriteString(h, text)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *CachedEncoder) lookup(key string) ([]float32, bool) {
	c.mu.RLock()
	vec, ok := c.mem[key]
	c.mu.RUnlock()
	if ok {
		return cloneVector(vec), true
	}

	vec, err := c.loadFromDisk(key)
	if err != nil {
		return nil, false
	}
	c.mu.Lock()
	c.mem[key] = vec
	c.mu.Unlock()
	return cloneVector(vec), true
}

func (c *CachedEncoder) store(key string, vec []float32) {
	c.mu.Lock()
	c.mem[key] = cloneVector(vec)
	c.mu.Unlock()
	_ = c.saveToDisk(key, vec)
}

func (c *CachedEncoder) loadFromDisk(key string) ([]float32, error) {
	if c.dir == "" {
		return nil, os.ErrNotExist
	}
	path := filepath.Join(c.dir, key+".bin")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("cache file too small: %s", path)
	}
	length := int(binary.LittleEndian.Uint32(data[:4]))
	data = data[4:]
	if len(data) != length*4 {
		return nil, errors.New("cache length mismatch: " + path)
	}
	vec := make([]float32, length)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4 : (i+1)*4]))
	}
	return vec, nil
}

func (c *CachedEncoder) saveToDisk(key string, vec []float32) error {
	if c.dir == "" {
		return nil
	}
	path := filepath.Join(c.dir, key+".bin")
	tmp := path + ".tmp"
	buf := make([]byte, 4+len(vec)*4)
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(vec)))
	off := 4
	for _, v := range vec {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
		off += 4
	}
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
