package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFile means a workbook is not at its expected path.
	ErrMissingFile = errors.New("workbook not found")

	// ErrSchemaMismatch means the header markers a layout depends on were not
	// found. Usually a new Census layout.
	ErrSchemaMismatch = errors.New("unexpected sheet layout")

	// ErrValueCast means a cell that must hold a count held something else
	// after the known sentinels were removed.
	ErrValueCast = errors.New("value is not an integer count")

	// ErrUnsupportedFormat means the file is neither an OLE2 (.xls) nor an
	// OOXML (.xlsx) workbook.
	ErrUnsupportedFormat = errors.New("unsupported workbook format")
)

// FileError attaches the workbook path and migration year to a parse or read
// failure. Year is 0 for population workbooks.
type FileError struct {
	Path string
	Year int
	Err  error
}

func (e *FileError) Error() string {
	if e.Year == 0 {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s (year %d): %v", e.Path, e.Year, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }
