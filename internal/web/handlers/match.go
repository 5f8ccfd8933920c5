package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/poi-xref/internal/embeddings"
	"github.com/poi-xref/internal/match"
)

// MatchHandler runs the matching pipeline on posted collections.
type MatchHandler struct {
	Config  *Config
	Encoder embeddings.Encoder
}

// MatchOptions override the server's match settings for one request.
type MatchOptions struct {
	K             *int     `json:"k,omitempty"`
	MaxDistance   *float64 `json:"max_distance_m,omitempty"`
	NameThreshold *float64 `json:"name_threshold,omitempty"`
	Projection    *string  `json:"projection,omitempty"`
	SkipCategory  bool     `json:"skip_category,omitempty"`
}

// MatchRequest carries both collections.
type MatchRequest struct {
	Reference  match.Collection `json:"reference"`
	Comparison match.Collection `json:"comparison"`
	Options    MatchOptions     `json:"options"`
}

// MatchResponse returns the enriched rows and the run summary.
type MatchResponse struct {
	Summary   match.Summary  `json:"summary"`
	MatchRate float64        `json:"match_rate"`
	Rows      match.Enriched `json:"rows"`
}

// Match handles POST /api/match
func (h *MatchHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid JSON request: %w", err))
		return
	}

	rows, summary, err := h.run(r, req)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, MatchResponse{
		Summary:   summary,
		MatchRate: summary.MatchRate(),
		Rows:      rows,
	})
}

func (h *MatchHandler) run(r *http.Request, req MatchRequest) (match.Enriched, match.Summary, error) {
	if err := checkSize(h.Config.Features.MaxRecords, req.Reference, req.Comparison); err != nil {
		return nil, match.Summary{}, err
	}
	if err := validateCollection(req.Reference); err != nil {
		return nil, match.Summary{}, fmt.Errorf("reference: %w", err)
	}
	if err := validateCollection(req.Comparison); err != nil {
		return nil, match.Summary{}, fmt.Errorf("comparison: %w", err)
	}

	cfg := h.Config.Match
	o := req.Options
	if o.K != nil {
		cfg.K = *o.K
	}
	if o.MaxDistance != nil {
		cfg.MaxDistance = *o.MaxDistance
	}
	if o.NameThreshold != nil {
		cfg.NameThreshold = *o.NameThreshold
	}
	if o.Projection != nil {
		cfg.Projection = *o.Projection
	}
	if err := cfg.Validate(); err != nil {
		return nil, match.Summary{}, errBadRequest{err}
	}

	enc := h.Encoder
	if o.SkipCategory {
		enc = nil
	}

	p := match.NewPipeline(match.PipelineConfig{
		Match:   cfg,
		Encoder: enc,
		Logger:  *zerolog.Ctx(r.Context()),
	})
	return p.Run(r.Context(), req.Reference, req.Comparison)
}

type errBadRequest struct{ error }

func (e errBadRequest) Unwrap() error { return e.error }

func statusFor(err error) int {
	var bad errBadRequest
	switch {
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &bad):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func validateCollection(c match.Collection) error {
	seen := make(map[string]struct{}, len(c.POIs))
	for i, p := range c.POIs {
		if p.ID == "" {
			return errBadRequest{fmt.Errorf("poi %d has no id", i)}
		}
		if _, dup := seen[p.ID]; dup {
			return errBadRequest{fmt.Errorf("duplicate id %q", p.ID)}
		}
		seen[p.ID] = struct{}{}
		lon, lat := p.Location.Lon(), p.Location.Lat()
		if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
			return errBadRequest{fmt.Errorf("poi %q has coordinates out of range", p.ID)}
		}
	}
	return nil
}
