// Package tabular reads company lists from spreadsheets and writes the
// contact result workbook.
package tabular

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
)

// CompanyColumn is the header that must name the company column.
const CompanyColumn = "Company"

var (
	// ErrMissingCompanyColumn is returned when the header row has no Company column.
	ErrMissingCompanyColumn = eris.New(`file must contain a "Company" column`)
	// ErrUnsupportedFormat is returned for extensions no reader handles.
	ErrUnsupportedFormat = eris.New("unsupported file format")
)

// Format identifies an input reader.
type Format string

// Supported input formats.
const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DetectFormat maps a filename to its reader. Legacy .xls workbooks are not
// supported.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", eris.Wrapf(ErrUnsupportedFormat, "tabular: %q", filepath.Ext(filename))
	}
}

// ReadCompanies returns the raw Company cell of every data row, in order.
// Cells are not normalized; blank and "nan" values are kept so the result
// table stays aligned with the input.
func ReadCompanies(r io.Reader, format Format) ([]string, error) {
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(r)
	case FormatCSV:
		rows, err = readCSV(r)
	default:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "tabular: format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, eris.Wrap(ErrMissingCompanyColumn, "tabular: empty sheet")
	}

	col := companyIndex(rows[0])
	if col < 0 {
		return nil, eris.Wrap(ErrMissingCompanyColumn, "tabular: read header")
	}

	names := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		names = append(names, cell(row, col))
	}
	return names, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "tabular: open workbook")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, eris.Wrapf(err, "tabular: read sheet %q", sheets[0])
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "tabular: read csv")
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

func companyIndex(header []string) int {
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), CompanyColumn) {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}
