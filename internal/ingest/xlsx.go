package ingest

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/poi-xref/internal/match"
)

// LoadXLSX reads a worksheet whose first row is the header. An empty sheet
// name selects the first sheet.
func LoadXLSX(path, sheet, source string, m Mapping) (match.Collection, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return match.Collection{}, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return match.Collection{}, NewInputError(source, 0, "", "read sheet %q: %v", sheet, err)
	}
	if len(rows) == 0 {
		return newBuilder(source, m).collection(), nil
	}

	columns := normalizeHeader(rows[0])
	if err := requireColumns(source, columns, m.ID, m.Lon, m.Lat); err != nil {
		return match.Collection{}, err
	}

	b := newBuilder(source, m)
	for i, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		if err := b.add(i+1, zipRecord(columns, row)); err != nil {
			return match.Collection{}, err
		}
	}
	return b.collection(), nil
}
