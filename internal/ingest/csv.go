package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poi-xref/internal/match"
)

// ReadCSV parses a CSV with a header row into a collection.
func ReadCSV(r io.Reader, source string, m Mapping) (match.Collection, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return newBuilder(source, m).collection(), nil
	}
	if err != nil {
		return match.Collection{}, NewInputError(source, 0, "", "failed to read header: %v", err)
	}
	columns := normalizeHeader(header)
	if err := requireColumns(source, columns, m.ID, m.Lon, m.Lat); err != nil {
		return match.Collection{}, err
	}

	b := newBuilder(source, m)
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return match.Collection{}, NewInputError(source, row, "", "%v", err)
		}
		if err := b.add(row, zipRecord(columns, fields)); err != nil {
			return match.Collection{}, err
		}
	}
	return b.collection(), nil
}

// LoadCSV opens path and reads it with ReadCSV.
func LoadCSV(path, source string, m Mapping) (match.Collection, error) {
	file, err := os.Open(path)
	if err != nil {
		return match.Collection{}, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()
	return ReadCSV(file, source, m)
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		out[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return out
}

func zipRecord(columns, fields []string) record {
	r := make(record, len(columns))
	for i, c := range columns {
		if i < len(fields) {
			r[c] = fields[i]
		}
	}
	return r
}

func requireColumns(source string, columns []string, required ...string) error {
	have := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		have[c] = struct{}{}
	}
	for _, req := range required {
		if _, ok := have[strings.ToLower(req)]; !ok {
			return NewInputError(source, 0, req, "column not found in header")
		}
	}
	return nil
}
