package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/poi-xref/internal/config"
	"github.com/poi-xref/internal/embeddings"
	"github.com/poi-xref/internal/match"
)

// Config represents the web server configuration (simplified)
type Config struct {
	Features struct {
		ExportEnabled bool `json:"export_enabled"`
		MaxRecords    int  `json:"max_records"`
	} `json:"features"`
	Match config.MatchConfig `json:"match"`
}

// APIHandler handles general API endpoints
type APIHandler struct {
	Config  *Config
	Encoder embeddings.Encoder
	Started time.Time
}

// HealthResponse reports liveness and the loaded encoder.
type HealthResponse struct {
	Status  string  `json:"status"`
	Model   string  `json:"model,omitempty"`
	Uptime  float64 `json:"uptime_seconds"`
	Version string  `json:"version"`
}

// Version is reported by the health endpoint.
var Version = "dev"

// Health returns service status
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Uptime:  time.Since(h.Started).Seconds(),
		Version: Version,
	}
	if h.Encoder != nil {
		resp.Model = h.Encoder.ModelID()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

var errTooLarge = errors.New("request exceeds the record limit")

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	zerolog.Ctx(r.Context()).Warn().Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func checkSize(limit int, collections ...match.Collection) error {
	if limit <= 0 {
		return nil
	}
	for _, c := range collections {
		if len(c.POIs) > limit {
			return errTooLarge
		}
	}
	return nil
}
