package importer

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"catalog-service/internal/models"
)

// RowNumberKey is the synthetic column carrying the 1-based spreadsheet
// row number of each parsed row.
const RowNumberKey = "_row"

// DetectFormat picks the parser from the uploaded filename
func DetectFormat(filename string) models.ImportFormat {
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls") {
		return models.ImportFormatXLSX
	}
	return models.ImportFormatCSV
}

// ReadRows parses the upload into rows keyed by lowercased trimmed
// headers. Rows whose cells are all empty are skipped.
func ReadRows(r io.Reader, format models.ImportFormat) ([]models.RawRow, error) {
	switch format {
	case models.ImportFormatXLSX:
		return readXLSX(r)
	default:
		return readCSV(r)
	}
}

func readCSV(r io.Reader) ([]models.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrNoRows
		}
		return nil, &ParseError{Format: "csv", Err: err}
	}
	headers := normalizeHeaders(header)

	var rows []models.RawRow
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Format: "csv", Err: err}
		}
		rowNum++
		if row := buildRow(headers, record, rowNum); row != nil {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([]models.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Format: "xlsx", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoRows
	}
	allRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Format: "xlsx", Err: err}
	}
	if len(allRows) < 2 {
		return nil, ErrNoRows
	}

	headers := normalizeHeaders(allRows[0])
	var rows []models.RawRow
	for i, record := range allRows[1:] {
		if row := buildRow(headers, record, i+2); row != nil {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}

func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return headers
}

// buildRow returns nil when every cell is empty
func buildRow(headers, record []string, rowNum int) models.RawRow {
	row := models.RawRow{}
	empty := true
	for i, h := range headers {
		if h == "" {
			continue
		}
		var val string
		if i < len(record) {
			val = strings.TrimSpace(record[i])
		}
		if val != "" {
			empty = false
		}
		row[h] = val
	}
	if empty {
		return nil
	}
	row[RowNumberKey] = strconv.Itoa(rowNum)
	return row
}

// ExtractColumns returns the sorted set of real column names present in
// the rows, excluding the synthetic row number.
func ExtractColumns(rows []models.RawRow) []string {
	seen := map[string]bool{}
	for _, row := range rows {
		for k := range row {
			if k != RowNumberKey {
				seen[k] = true
			}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
