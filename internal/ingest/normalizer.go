// Package ingest maps spreadsheet rows onto StatRecords and validates the
// whole batch before anything is written.
package ingest

import (
	"errors"
	"fmt"
	"kvk-dashboard/internal/domain"
	"kvk-dashboard/internal/spreadsheet"
	"math"
	"strconv"
	"strings"
)

var (
	errNotNumber  = errors.New("is not a number")
	errNegative   = errors.New("must not be negative")
	errOutOfRange = errors.New("is out of range")
)

// Resolve probes aliases in order and returns the first non-empty cell.
func Resolve(row spreadsheet.Row, aliases []string) (string, bool) {
	for _, alias := range aliases {
		if v, ok := row.Cells[alias]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// ParseCount converts a loosely formatted cell into a non-negative integer.
// Empty input is 0; grouping separators are ignored and fractions truncated.
func ParseCount(raw string) (int64, error) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ',', '_', ' ', '\u00a0':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	if s == "" {
		return 0, nil
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, errNegative
		}
		return n, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumber
	}
	if f < 0 {
		return 0, errNegative
	}
	if f >= math.MaxInt64 {
		return 0, errOutOfRange
	}
	return int64(f), nil
}

// NormalizeStats validates every row and returns records for phase. Any
// invalid row rejects the batch with a *domain.ValidationError.
func NormalizeStats(rows []spreadsheet.Row, phase domain.Phase) ([]domain.StatRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows", domain.ErrInvalidFormat)
	}

	var problems []domain.RowError
	records := make([]domain.StatRecord, 0, len(rows))
	seen := make(map[string]int, len(rows))

	for _, row := range rows {
		line := row.Line
		rec := domain.StatRecord{Phase: phase}

		id, _ := Resolve(row, governorIDColumn.Aliases)
		name, _ := Resolve(row, governorNameColumn.Aliases)
		rec.GovernorID, rec.GovernorName = id, name

		if id == "" {
			problems = append(problems, domain.RowError{Row: line, Field: string(FieldGovernorID), Reason: "is required"})
		} else if first, dup := seen[id]; dup {
			problems = append(problems, domain.RowError{
				Row: line, Field: string(FieldGovernorID), Reason: fmt.Sprintf("duplicates row %d", first),
			})
		} else {
			seen[id] = line
		}
		if name == "" {
			problems = append(problems, domain.RowError{Row: line, Field: string(FieldGovernorName), Reason: "is required"})
		}

		for _, col := range StatColumns {
			if col.set == nil {
				continue
			}
			raw, _ := Resolve(row, col.Aliases)
			v, err := ParseCount(raw)
			if err != nil {
				problems = append(problems, domain.RowError{
					Row: line, Field: string(col.Field), Reason: fmt.Sprintf("%q %v", raw, err),
				})
				continue
			}
			col.set(&rec, v)
		}

		records = append(records, rec)
	}

	if len(problems) > 0 {
		return nil, &domain.ValidationError{Rows: problems}
	}
	return records, nil
}

// TotalDeadsPatch is one row of the narrow total-deads upload.
type TotalDeadsPatch struct {
	Line       int
	GovernorID string
	TotalDeads int64
}

func NormalizeTotalDeads(rows []spreadsheet.Row) ([]TotalDeadsPatch, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows", domain.ErrInvalidFormat)
	}

	var problems []domain.RowError
	patches := make([]TotalDeadsPatch, 0, len(rows))
	seen := make(map[string]int, len(rows))

	for _, row := range rows {
		line := row.Line
		id, _ := Resolve(row, governorIDColumn.Aliases)
		if id == "" {
			problems = append(problems, domain.RowError{Row: line, Field: string(FieldGovernorID), Reason: "is required"})
			continue
		}
		if first, dup := seen[id]; dup {
			problems = append(problems, domain.RowError{
				Row: line, Field: string(FieldGovernorID), Reason: fmt.Sprintf("duplicates row %d", first),
			})
			continue
		}
		seen[id] = line

		raw, ok := Resolve(row, totalDeadsColumn.Aliases)
		if !ok {
			problems = append(problems, domain.RowError{Row: line, Field: string(FieldTotalDeads), Reason: "is required"})
			continue
		}
		v, err := ParseCount(raw)
		if err != nil {
			problems = append(problems, domain.RowError{
				Row: line, Field: string(FieldTotalDeads), Reason: fmt.Sprintf("%q %v", raw, err),
			})
			continue
		}
		patches = append(patches, TotalDeadsPatch{Line: line, GovernorID: id, TotalDeads: v})
	}

	if len(problems) > 0 {
		return nil, &domain.ValidationError{Rows: problems}
	}
	return patches, nil
}
