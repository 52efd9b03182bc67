package tabular

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/JakeFAU/contact-finder/internal/contact"
)

// ContentType is the MIME type of the result workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ResultColumns is the header row of the result workbook. Address is kept for
// compatibility with downstream sheets and is always empty.
var ResultColumns = []string{"Company", "Email", "Phone", "Website", "Address", "Source"}

const resultSheet = "Sheet1"

// WriteResults renders rows as an xlsx workbook, one row per input row.
func WriteResults(w io.Writer, rows contact.ResultSet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header := make([]any, len(ResultColumns))
	for i, h := range ResultColumns {
		header[i] = h
	}
	if err := f.SetSheetRow(resultSheet, "A1", &header); err != nil {
		return eris.Wrap(err, "tabular: write header")
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(resultSheet, 1, 1, style)
	}

	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return eris.Wrap(err, "tabular: cell name")
		}
		values := []any{row.Company, row.Email, row.Phone, row.Website, "", row.Source}
		if err := f.SetSheetRow(resultSheet, cellName, &values); err != nil {
			return eris.Wrapf(err, "tabular: write row %d", i+2)
		}
	}

	_ = f.SetColWidth(resultSheet, "A", "A", 36)
	_ = f.SetColWidth(resultSheet, "B", "B", 32)
	_ = f.SetColWidth(resultSheet, "C", "C", 16)
	_ = f.SetColWidth(resultSheet, "D", "D", 36)
	_ = f.SetColWidth(resultSheet, "F", "F", 22)

	if _, err := f.WriteTo(w); err != nil {
		return eris.Wrap(err, "tabular: write workbook")
	}
	return nil
}
