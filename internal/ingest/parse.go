package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/MrSnakeDoc/promoavail/internal/catalog"
)

// Feed formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// rowKey carries the 1-based source line of a record.
const rowKey = "_row"

var errEmptyFeed = errors.New("file must have a header row and at least one data row")

// FormatFor picks the parser from the file extension.
func FormatFor(filename string) (string, error) {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".csv"):
		return FormatCSV, nil
	case strings.HasSuffix(name, ".xlsx"):
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported file type %q, expected .csv or .xlsx", filename)
	}
}

func parseRecords(format string, r io.Reader) ([]map[string]string, error) {
	switch format {
	case FormatCSV:
		return parseCSV(r)
	case FormatXLSX:
		return parseXLSX(r)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func parseCSV(file io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, errEmptyFeed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	normalizeHeaders(headers)

	var rows []map[string]string
	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", lineNum+1, err)
		}
		rows = append(rows, toRecord(headers, record, lineNum+1))
		lineNum++
	}
	if len(rows) == 0 {
		return nil, errEmptyFeed
	}
	return rows, nil
}

func parseXLSX(file io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	sheetName := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, catalog.ProductsSheet) {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, errEmptyFeed
	}

	headers := excelRows[0]
	normalizeHeaders(headers)

	rows := make([]map[string]string, 0, len(excelRows)-1)
	for rowIdx, excelRow := range excelRows[1:] {
		rows = append(rows, toRecord(headers, excelRow, rowIdx+2))
	}
	return rows, nil
}

// normalizeHeaders maps "Other Names *" to "other_names".
func normalizeHeaders(headers []string) {
	for i := range headers {
		h := strings.TrimSpace(strings.ToLower(headers[i]))
		h = strings.TrimSuffix(h, " *")
		h = strings.TrimSuffix(h, "*")
		headers[i] = strings.Join(strings.Fields(h), "_")
	}
}

func toRecord(headers, values []string, line int) map[string]string {
	row := make(map[string]string, len(headers)+1)
	for i, value := range values {
		if i < len(headers) {
			row[headers[i]] = strings.TrimSpace(value)
		}
	}
	row[rowKey] = strconv.Itoa(line)
	return row
}
