package handlers

import (
	"fmt"
	"net/http"

	"github.com/poi-xref/internal/fuzz"
	"github.com/poi-xref/internal/normalize"
)

// ScoreHandler compares two names the way the name matcher does.
type ScoreHandler struct {
	Config *Config
}

// ScoreRequest holds the pair. Raw skips normalization.
type ScoreRequest struct {
	A   *string `json:"a"`
	B   *string `json:"b"`
	Raw bool    `json:"raw"`
}

// ScoreResponse shows the compared keys and every ratio.
type ScoreResponse struct {
	KeyA      string          `json:"key_a"`
	KeyB      string          `json:"key_b"`
	Breakdown *fuzz.Breakdown `json:"breakdown"`
	Passes    bool            `json:"passes_threshold"`
	Threshold float64         `json:"threshold"`
}

// Score handles POST /api/score
func (h *ScoreHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid JSON request: %w", err))
		return
	}

	resp := ScoreResponse{Threshold: h.Config.Match.NameThreshold}
	if req.Raw {
		resp.KeyA, resp.KeyB = deref(req.A), deref(req.B)
	} else {
		n := normalize.NewNameNormalizer(h.Config.Match.NonPrimaryTokens)
		resp.KeyA, resp.KeyB = n.Key(req.A), n.Key(req.B)
	}

	if resp.KeyA != "" && resp.KeyB != "" {
		bd := fuzz.Combined(resp.KeyA, resp.KeyB)
		resp.Breakdown = &bd
		resp.Passes = bd.Max >= resp.Threshold
	}
	writeJSON(w, http.StatusOK, resp)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
