package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/poi-xref/internal/embeddings"
	"github.com/poi-xref/internal/export"
)

// ExportHandler runs a match and returns the rows as a file.
type ExportHandler struct {
	Config  *Config
	Encoder embeddings.Encoder
}

// ExportData handles POST /api/export?format=csv|geojson
func (h *ExportHandler) ExportData(w http.ResponseWriter, r *http.Request) {
	if !h.Config.Features.ExportEnabled {
		writeError(w, r, http.StatusForbidden, fmt.Errorf("export feature disabled"))
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "geojson" {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("unsupported export format %q, use csv or geojson", format))
		return
	}

	var req MatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid JSON request: %w", err))
		return
	}

	mh := &MatchHandler{Config: h.Config, Encoder: h.Encoder}
	rows, _, err := mh.run(r, req)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}

	var buf bytes.Buffer
	contentType := "text/csv"
	switch format {
	case "csv":
		err = export.WriteCSV(&buf, rows)
	case "geojson":
		contentType = "application/geo+json"
		var data []byte
		data, err = export.FeatureCollection(rows).MarshalJSON()
		buf.Write(data)
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	filename := fmt.Sprintf("export_%s.%s", uuid.NewString()[:8], format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
