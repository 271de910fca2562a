// Package spreadsheet turns uploaded tabular files into header-keyed rows.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"kvk-dashboard/internal/domain"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one data row. Line is its 1-based position in the source file
// (the sheet row number for xlsx), so blank rows and the header count.
type Row struct {
	Line  int
	Cells map[string]string
}

// record is one raw row before the header is applied.
type record struct {
	line  int
	cells []string
}

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

var (
	zipMagic = []byte("PK\x03\x04")
	utf8BOM  = []byte("\xef\xbb\xbf")
)

// Detect picks the decoder from the file content, falling back to the
// extension only to reject legacy binary workbooks.
func Detect(filename string, data []byte) (Format, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", fmt.Errorf("%w: file is empty", domain.ErrInvalidFormat)
	}
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX, nil
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		return "", fmt.Errorf("%w: legacy .xls workbooks are not supported, save as .xlsx", domain.ErrInvalidFormat)
	case ".xlsx", ".xlsm":
		return "", fmt.Errorf("%w: %s is not a valid workbook", domain.ErrInvalidFormat, filename)
	}
	return FormatCSV, nil
}

// Parse reads the first worksheet (or the whole csv) using the first row as
// header. A file without at least one data row is a format error.
func Parse(filename string, data []byte) ([]Row, error) {
	format, err := Detect(filename, data)
	if err != nil {
		return nil, err
	}

	var records []record
	switch format {
	case FormatXLSX:
		records, err = readXLSX(data)
	default:
		records, err = readCSV(data)
	}
	if err != nil {
		return nil, err
	}

	return toRows(records)
}

func readXLSX(data []byte) ([]record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrInvalidFormat)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err)
	}

	records := make([]record, len(rows))
	for i, cells := range rows {
		records[i] = record{line: i + 1, cells: cells}
	}
	return records, nil
}

func readCSV(data []byte) ([]record, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var records []record
	for {
		cells, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err)
		}
		// empty lines are skipped by the reader but still counted here
		line, _ := r.FieldPos(0)
		records = append(records, record{line: line, cells: cells})
	}
	return records, nil
}

func toRows(records []record) ([]Row, error) {
	headerIdx := -1
	for i, rec := range records {
		if !blank(rec.cells) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("%w: no header row", domain.ErrInvalidFormat)
	}

	header := make([]string, len(records[headerIdx].cells))
	for i, h := range records[headerIdx].cells {
		header[i] = strings.TrimSpace(h)
	}

	var rows []Row
	for _, rec := range records[headerIdx+1:] {
		if blank(rec.cells) {
			continue
		}
		cells := make(map[string]string, len(header))
		for i, key := range header {
			if key == "" {
				continue
			}
			if _, dup := cells[key]; dup {
				continue
			}
			if i < len(rec.cells) {
				cells[key] = strings.TrimSpace(rec.cells[i])
			} else {
				cells[key] = ""
			}
		}
		rows = append(rows, Row{Line: rec.line, Cells: cells})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows", domain.ErrInvalidFormat)
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
