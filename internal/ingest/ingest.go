package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/surveylens/surveylens/internal/classify"
)

// Decode reads a survey export into a rectangular table of cleaned
// cells, dispatching on the file extension. The returned rows are
// padded to a uniform width and fully empty trailing/leading rows are
// trimmed.
func Decode(filename string, r io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return DecodeXLSX(r)
	case ".csv":
		return DecodeCSV(r)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
}

// DecodeXLSX reads the first sheet of a workbook.
func DecodeXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return normalize(rows), nil
}

// DecodeCSV reads a comma-separated export. Records may have ragged
// widths; they are padded to the widest row.
func DecodeCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return normalize(rows), nil
}

// normalize cleans every cell, pads rows to a uniform width and trims
// fully empty edge rows.
func normalize(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		clean := make([]string, width)
		for i := 0; i < width; i++ {
			if i < len(row) {
				clean[i] = classify.StripMarkup(row[i])
			}
		}
		out = append(out, clean)
	}
	return trimEmptyRows(out)
}

func trimEmptyRows(rows [][]string) [][]string {
	isEmpty := func(row []string) bool {
		for _, v := range row {
			if strings.TrimSpace(v) != "" {
				return false
			}
		}
		return true
	}
	for len(rows) > 0 && isEmpty(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	for len(rows) > 0 && isEmpty(rows[0]) {
		rows = rows[1:]
	}
	return rows
}
