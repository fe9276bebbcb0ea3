package workbook

import (
	"errors"
	"fmt"

	"github.com/extrame/xls"

	"github.com/couchcryptid/census-migration-etl/internal/domain"
)

// BIFF8 worksheets have at most 256 columns (A..IV).
const maxBIFFColumns = 256

// firstUserFormat is the lowest format index a workbook may define itself;
// lower indexes are Excel's built-in formats.
const firstUserFormat = 164

// formulaText is what the decoder returns for a FORMULA record instead of
// its cached value.
const formulaText = "FormulaCol"

// ErrFormulaCell means a BIFF cell holds a formula. The decoder does not
// expose the cached result, so the value cannot be read.
var ErrFormulaCell = errors.New("formula cells are not supported in .xls workbooks")

// readXLS decodes the first worksheet of a BIFF workbook. The decoder panics
// on some malformed records, so panics are turned into errors.
//
// Cells with a user-defined number format ("+/-"#,##0 on margin-of-error
// columns) would be rendered as RFC 3339 dates by the decoder, so those
// formats are removed before any cell is read and the raw number is returned
// instead. Count tables carry no dates.
func readXLS(path string) (sheet domain.Sheet, err error) {
	defer func() {
		if r := recover(); r != nil {
			sheet, err = nil, fmt.Errorf("decode xls workbook: %v", r)
		}
	}()

	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls workbook: %w", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, fmt.Errorf("%w: workbook has no worksheets", domain.ErrSchemaMismatch)
	}
	dropUserFormats(wb)

	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, fmt.Errorf("%w: first worksheet unreadable", domain.ErrSchemaMismatch)
	}

	sheet = make(domain.Sheet, 0, int(ws.MaxRow)+1)
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := rowAt(ws, i)
		if row == nil {
			sheet = append(sheet, nil)
			continue
		}
		// Rows without a ROW record report LastCol 0, so every column is
		// read; absent cells come back as "".
		cells := make([]string, maxBIFFColumns)
		for c := range cells {
			cells[c] = row.Col(c)
			if cells[c] == formulaText {
				return nil, fmt.Errorf("%w: row %d column %d", ErrFormulaCell, i+1, c+1)
			}
		}
		sheet = append(sheet, trimTrailingEmpty(cells))
	}
	return sheet, nil
}

func dropUserFormats(wb *xls.WorkBook) {
	for idx := range wb.Formats {
		if idx >= firstUserFormat {
			delete(wb.Formats, idx)
		}
	}
}

// rowAt returns row i, or nil when the worksheet has no cells in it.
// WorkSheet.Row dereferences the missing row before returning it.
func rowAt(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(i)
}
