package handlers

import (
	"fmt"
	"net/http"

	"github.com/poi-xref/internal/normalize"
)

// NormalizeHandler exposes the text normalizer.
type NormalizeHandler struct {
	Config *Config
}

// NormalizeRequest lists texts to clean. Kind is "name" (default) or
// "address".
type NormalizeRequest struct {
	Kind  string    `json:"kind"`
	Texts []*string `json:"texts"`
}

// NormalizedText is the result for one input.
type NormalizedText struct {
	Input   *string `json:"input"`
	Clean   string  `json:"clean"`
	Primary string  `json:"primary,omitempty"`
}

// NormalizeResponse keeps inputs in order.
type NormalizeResponse struct {
	Kind    string           `json:"kind"`
	Results []NormalizedText `json:"results"`
}

// Normalize handles POST /api/normalize
func (h *NormalizeHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid JSON request: %w", err))
		return
	}

	var n *normalize.Normalizer
	switch req.Kind {
	case "", "name":
		req.Kind = "name"
		n = normalize.NewNameNormalizer(h.Config.Match.NonPrimaryTokens)
	case "address":
		n = normalize.NewAddressNormalizer()
	default:
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("unknown kind %q, use name or address", req.Kind))
		return
	}

	resp := NormalizeResponse{Kind: req.Kind, Results: make([]NormalizedText, len(req.Texts))}
	for i, t := range req.Texts {
		res := NormalizedText{Input: t, Clean: n.CleanValue(t)}
		if req.Kind == "name" {
			res.Primary = n.Primary(res.Clean)
		}
		resp.Results[i] = res
	}
	writeJSON(w, http.StatusOK, resp)
}
