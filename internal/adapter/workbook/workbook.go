// Package workbook reads the first worksheet of a spreadsheet file into a
// domain.Sheet. Legacy BIFF (.xls) workbooks are decoded with extrame/xls and
// OOXML (.xlsx) workbooks with excelize. The decoder is chosen from the file
// signature, not the extension, so a workbook loads whichever format it was
// saved in.
package workbook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/couchcryptid/census-migration-etl/internal/domain"
)

var (
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	zipSignature = []byte{'P', 'K', 0x03, 0x04}
)

// Format is a workbook container format.
type Format string

const (
	FormatXLS  Format = "xls"
	FormatXLSX Format = "xlsx"
)

// Loader reads workbooks from the local filesystem.
// It implements pipeline.SheetLoader.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the first worksheet of the workbook at path. Trailing empty
// cells are trimmed from every row.
func (l *Loader) Load(ctx context.Context, path string) (domain.Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var sheet domain.Sheet
	switch format {
	case FormatXLS:
		sheet, err = readXLS(path)
	case FormatXLSX:
		sheet, err = readXLSX(path)
	}
	if err != nil {
		return nil, err
	}

	l.logger.Debug("workbook loaded", "path", path, "format", format, "rows", len(sheet))
	return sheet, nil
}

// DetectFormat inspects the leading bytes of the file at path.
func DetectFormat(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %w", domain.ErrMissingFile, err)
		}
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	head := make([]byte, len(oleSignature))
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read workbook signature: %w", err)
	}
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, oleSignature):
		return FormatXLS, nil
	case bytes.HasPrefix(head, zipSignature):
		return FormatXLSX, nil
	default:
		return "", domain.ErrUnsupportedFormat
	}
}

func trimTrailingEmpty(row []string) []string {
	end := len(row)
	for end > 0 && row[end-1] == "" {
		end--
	}
	return row[:end]
}
