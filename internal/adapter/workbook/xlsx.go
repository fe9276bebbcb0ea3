package workbook

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/census-migration-etl/internal/domain"
)

// readXLSX decodes the first worksheet of an OOXML workbook. Raw cell values
// are requested so number formats ("#,##0") do not leak into the text.
func readXLSX(path string) (domain.Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx workbook: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: workbook has no worksheets", domain.ErrSchemaMismatch)
	}
	rows, err := f.GetRows(names[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", names[0], err)
	}

	sheet := make(domain.Sheet, len(rows))
	for i, row := range rows {
		sheet[i] = trimTrailingEmpty(row)
	}
	return sheet, nil
}

// WriteXLSX saves sheet as the only worksheet of a new OOXML workbook at
// path. Cells that parse as integers are stored as numbers, everything else
// as text, which mirrors how Census tables are typed.
func WriteXLSX(path string, sheet domain.Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(f.GetSheetName(0))
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}
	for r, row := range sheet {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for c, v := range row {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				values[c] = n
				continue
			}
			if v != "" {
				values[c] = v
			}
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush worksheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
