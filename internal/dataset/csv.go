// Package dataset loads the borough boundary file and the Met Police
// crime extracts into domain records.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/safecity/safecity/internal/domain/model"
)

// Leading fixed columns of a Met Police wide extract.
const (
	colBorough = 0
	colMajor   = 1
	colMinor   = 2
	fixedCols  = 3
)

// RowWarning describes a row or cell that could not be fully parsed.
// Warnings are reported, counted, and skipped; they never abort a load.
type RowWarning struct {
	Source string // file the row came from
	Line   int    // 1-based line number
	Reason string
}

func (w RowWarning) String() string {
	return fmt.Sprintf("%s:%d: %s", w.Source, w.Line, w.Reason)
}

// ReadCrimeCSV melts one wide-format extract into long-form records.
// The header is `BoroughName,MajorText,MinorText,<months...>` with one
// count column per month. Blank counts are zero; non-numeric counts
// skip the cell with a warning; rows with too few columns are skipped
// whole. A header whose month columns do not parse is a hard error.
func ReadCrimeCSV(r io.Reader, source string) ([]model.CrimeRecord, []RowWarning, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // rows validated manually; extracts are ragged in the wild
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%w: %s", ErrEmptyFile, source)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrHeader, source, err)
	}
	if len(header) <= fixedCols {
		return nil, nil, fmt.Errorf("%w: %s: need at least one month column", ErrHeader, source)
	}
	if !strings.EqualFold(strings.TrimSpace(header[colBorough]), "BoroughName") ||
		!strings.EqualFold(strings.TrimSpace(header[colMajor]), "MajorText") ||
		!strings.EqualFold(strings.TrimSpace(header[colMinor]), "MinorText") {
		return nil, nil, fmt.Errorf("%w: %s: unexpected leading columns %v", ErrHeader, source, header[:fixedCols])
	}

	months := make([]string, len(header)-fixedCols)
	for i, h := range header[fixedCols:] {
		m, err := model.ParseMonth(h)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: column %d: %w", ErrHeader, source, i+fixedCols+1, err)
		}
		months[i] = m
	}

	var records []model.CrimeRecord
	var warnings []RowWarning
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			warnings = append(warnings, RowWarning{Source: source, Line: line, Reason: err.Error()})
			continue
		}
		if len(row) < fixedCols+1 {
			warnings = append(warnings, RowWarning{Source: source, Line: line, Reason: "too few columns"})
			continue
		}
		borough := strings.TrimSpace(row[colBorough])
		major := strings.TrimSpace(row[colMajor])
		minor := strings.TrimSpace(row[colMinor])
		if borough == "" || major == "" {
			warnings = append(warnings, RowWarning{Source: source, Line: line, Reason: "missing borough or major category"})
			continue
		}
		for i, month := range months {
			idx := fixedCols + i
			if idx >= len(row) {
				break
			}
			cell := strings.TrimSpace(row[idx])
			if cell == "" {
				cell = "0"
			}
			count, err := strconv.Atoi(cell)
			if err != nil || count < 0 {
				warnings = append(warnings, RowWarning{
					Source: source,
					Line:   line,
					Reason: fmt.Sprintf("bad count %q for month %s", row[idx], month),
				})
				continue
			}
			records = append(records, model.CrimeRecord{
				Borough: borough,
				Major:   major,
				Minor:   minor,
				Month:   month,
				Count:   count,
			})
		}
	}
	return records, warnings, nil
}
