package embeddings

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// OrtConfig locates a sentence-transformer ONNX export and its tokenizer.
type OrtConfig struct {
	LibraryPath   string // onnxruntime shared library; empty uses the platform default
	ModelPath     string
	TokenizerPath string // tokenizer.json
	ModelID       string
	MaxSeqLen     int
	HiddenSize    int
	Device        string // cpu | cuda | coreml
}

// OrtEncoder runs a MiniLM-style model through onnxruntime and mean-pools
// the last hidden state over the attention mask, then L2-normalizes.
type OrtEncoder struct {
	cfg     OrtConfig
	tk      *tokenizer.Tokenizer
	session *ort.DynamicAdvancedSession

	mu sync.Mutex
}

var ortInit struct {
	sync.Mutex
	refs int
}

// NewOrtEncoder loads the tokenizer and creates an inference session.
func NewOrtEncoder(cfg OrtConfig) (*OrtEncoder, error) {
	if cfg.ModelPath == "" || cfg.TokenizerPath == "" {
		return nil, errors.New("ort encoder: model and tokenizer paths are required")
	}
	if cfg.ModelID == "" {
		cfg.ModelID = filepath.Base(cfg.ModelPath)
	}
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 128
	}
	if cfg.HiddenSize <= 0 {
		cfg.HiddenSize = 384
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", cfg.TokenizerPath, err)
	}

	if err := acquireEnvironment(cfg.LibraryPath); err != nil {
		return nil, err
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		releaseEnvironment()
		return nil, fmt.Errorf("session options: %w", err)
	}
	defer opts.Destroy()

	if err := appendProvider(opts, cfg.Device); err != nil {
		releaseEnvironment()
		return nil, err
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"}, opts)
	if err != nil {
		releaseEnvironment()
		return nil, fmt.Errorf("create session for %s: %w", cfg.ModelPath, err)
	}

	return &OrtEncoder{cfg: cfg, tk: tk, session: session}, nil
}

func acquireEnvironment(libPath string) error {
	ortInit.Lock()
	defer ortInit.Unlock()
	if ortInit.refs == 0 {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}
	ortInit.refs++
	return nil
}

func releaseEnvironment() {
	ortInit.Lock()
	defer ortInit.Unlock()
	ortInit.refs--
	if ortInit.refs == 0 {
		_ = ort.DestroyEnvironment()
	}
}

func appendProvider(opts *ort.SessionOptions, device string) error {
	switch device {
	case "", "cpu":
		return nil
	case "cuda":
		cudaOpts, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return fmt.Errorf("cuda provider options: %w", err)
		}
		defer cudaOpts.Destroy()
		if err := opts.AppendExecutionProviderCUDA(cudaOpts); err != nil {
			return fmt.Errorf("enable cuda: %w", err)
		}
		return nil
	case "coreml":
		if err := opts.AppendExecutionProviderCoreML(0); err != nil {
			return fmt.Errorf("enable coreml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown device %q", device)
	}
}

// ModelID implements Encoder.
func (o *OrtEncoder) ModelID() string { return o.cfg.ModelID }

// Close releases the session and, with the last encoder, the environment.
func (o *OrtEncoder) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil
	}
	err := o.session.Destroy()
	o.session = nil
	releaseEnvironment()
	return err
}

// EncodeBatch implements Encoder. The whole slice is one model call; callers
// control batch size.
func (o *OrtEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil, errors.New("ort encoder is closed")
	}

	ids, mask, types, seqLen, err := o.tokenize(texts)
	if err != nil {
		return nil, err
	}

	batch := int64(len(texts))
	shape := ort.NewShape(batch, int64(seqLen))
	idsT, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, fmt.Errorf("input_ids tensor: %w", err)
	}
	defer idsT.Destroy()
	maskT, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, fmt.Errorf("attention_mask tensor: %w", err)
	}
	defer maskT.Destroy()
	typesT, err := ort.NewTensor(shape, types)
	if err != nil {
		return nil, fmt.Errorf("token_type_ids tensor: %w", err)
	}
	defer typesT.Destroy()

	hidden := o.cfg.HiddenSize
	outT, err := ort.NewEmptyTensor[float32](ort.NewShape(batch, int64(seqLen), int64(hidden)))
	if err != nil {
		return nil, fmt.Errorf("output tensor: %w", err)
	}
	defer outT.Destroy()

	if err := o.session.Run([]ort.Value{idsT, maskT, typesT}, []ort.Value{outT}); err != nil {
		return nil, fmt.Errorf("run %s: %w", o.cfg.ModelID, err)
	}

	return meanPool(outT.GetData(), mask, len(texts), seqLen, hidden), nil
}

// tokenize encodes texts, truncating to MaxSeqLen and right-padding to the
// longest sequence in the batch.
func (o *OrtEncoder) tokenize(texts []string) (ids, mask, types []int64, seqLen int, err error) {
	encoded := make([]*tokenizer.Encoding, len(texts))
	for i, t := range texts {
		enc, err := o.tk.EncodeSingle(t, true)
		if err != nil {
			return nil, nil, nil, 0, fmt.Errorf("tokenize %q: %w", t, err)
		}
		encoded[i] = enc
		if n := min(len(enc.GetIds()), o.cfg.MaxSeqLen); n > seqLen {
			seqLen = n
		}
	}
	if seqLen == 0 {
		seqLen = 1
	}

	size := len(texts) * seqLen
	ids = make([]int64, size)
	mask = make([]int64, size)
	types = make([]int64, size)
	for i, enc := range encoded {
		encIDs, encMask, encTypes := enc.GetIds(), enc.GetAttentionMask(), enc.GetTypeIds()
		n := min(len(encIDs), seqLen)
		for j := 0; j < n; j++ {
			k := i*seqLen + j
			ids[k] = int64(encIDs[j])
			mask[k] = 1
			if j < len(encMask) {
				mask[k] = int64(encMask[j])
			}
			if j < len(encTypes) {
				types[k] = int64(encTypes[j])
			}
		}
	}
	return ids, mask, types, seqLen, nil
}

// meanPool averages token vectors weighted by the attention mask and
// L2-normalizes each sentence vector.
func meanPool(hiddenStates []float32, mask []int64, batch, seqLen, hidden int) [][]float32 {
	out := make([][]float32, batch)
	for b := 0; b < batch; b++ {
		vec := make([]float32, hidden)
		var count float32
		for s := 0; s < seqLen; s++ {
			if mask[b*seqLen+s] == 0 {
				continue
			}
			count++
			base := (b*seqLen + s) * hidden
			for h := 0; h < hidden; h++ {
				vec[h] += hiddenStates[base+h]
			}
		}
		if count > 0 {
			for h := range vec {
				vec[h] /= count
			}
		}
		l2Normalize(vec)
		out[b] = vec
	}
	return out
}
