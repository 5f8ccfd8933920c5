package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poi-xref/internal/match"
)

// Label classifies a reference row against the known correct match.
type Label string

const (
	// LabelMatch is an accepted match to the correct comparison POI.
	LabelMatch Label = "match"
	// LabelMistake is an accepted match to the wrong comparison POI.
	LabelMistake Label = "mistake"
	// LabelMiss is a reference row left unmatched.
	LabelMiss Label = "miss"
)

// Truth maps reference ids to the id of the comparison POI that describes
// the same place. An empty value means the place has no counterpart.
type Truth map[string]string

// Classify labels a row. Without a truth entry an accepted match counts as
// correct.
func (t Truth) Classify(r match.Row) Label {
	if !r.Matched() {
		return LabelMiss
	}
	want, ok := t[r.ID]
	if !ok || want == *r.MatchedID {
		return LabelMatch
	}
	return LabelMistake
}

// ReadTruth parses a CSV with an id column and a true_id column.
func ReadTruth(r io.Reader) (Truth, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Truth{}, nil
		}
		return nil, fmt.Errorf("failed to read truth header: %w", err)
	}

	idCol, trueCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "id":
			idCol = i
		case "true_id":
			trueCol = i
		}
	}
	if idCol < 0 || trueCol < 0 {
		return nil, fmt.Errorf("truth file needs id and true_id columns, got %v", header)
	}

	truth := Truth{}
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read truth line %d: %w", line, err)
		}
		if idCol >= len(rec) {
			continue
		}
		id := strings.TrimSpace(rec[idCol])
		if id == "" {
			continue
		}
		want := ""
		if trueCol < len(rec) {
			want = strings.TrimSpace(rec[trueCol])
		}
		truth[id] = want
	}
	return truth, nil
}

// LoadTruth reads a truth CSV from path.
func LoadTruth(path string) (Truth, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open truth file: %w", err)
	}
	defer f.Close()
	return ReadTruth(f)
}
