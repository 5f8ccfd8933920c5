package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/poi-xref/internal/match"
)

// WriteCSV writes rows with Header as the first record.
func WriteCSV(w io.Writer, rows match.Enriched) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(Header))
	for i, r := range rows {
		for j, v := range rowValues(r) {
			record[j] = formatCell(v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveCSV writes rows to path, creating the parent directory.
func SaveCSV(path string, rows match.Enriched) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer file.Close()

	if err := WriteCSV(file, rows); err != nil {
		return fmt.Errorf("failed to export %s: %w", path, err)
	}
	return file.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}
