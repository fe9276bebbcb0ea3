package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseMigrationSheet reshapes one year's raw migration table into long
// format: one Measure per destination row and origin column, estimates and
// margins of error alike. Year is left zero for the caller to tag.
//
// Output order follows a column-major melt: every destination for the first
// origin column, then every destination for the next.
//
// Only the disclaimer block is addressed by physical row. Empty rows below it
// are dropped before the label row is skipped, so the header offsets in
// layout do not depend on blank spacing in the table.
func ParseMigrationSheet(sheet Sheet, layout MigrationLayout) ([]Measure, error) {
	body := sheet.Normalize().
		SkipRows(layout.DisclaimerRows).
		DropEmptyRows().
		SkipRows(layout.LabelRows)

	body, err := body.DropRepeatedIndexColumns(layout.IndexMarker)
	if err != nil {
		return nil, err
	}
	body = body.DropSparseRows(layout.MinValuesPerRow).DropDuplicateRows()

	if layout.ExtraColumnCount > 0 {
		if body.Width() <= layout.ExtraColumnStart+layout.ExtraColumnCount {
			return nil, fmt.Errorf("%w: %s layout needs more than %d columns, sheet has %d",
				ErrSchemaMismatch, layout.Name, layout.ExtraColumnStart+layout.ExtraColumnCount, body.Width())
		}
		body = body.DropColumns(layout.ExtraColumnStart, layout.ExtraColumnCount)
	}

	if len(body) < layout.HeaderRows {
		return nil, fmt.Errorf("%w: %d header rows expected, %d rows left",
			ErrSchemaMismatch, layout.HeaderRows, len(body))
	}
	body = body.ForwardFillRow(layout.OriginRow)

	origins := body[layout.OriginRow]
	types := body[layout.TypeRow]
	rows := body[layout.HeaderRows:]
	width := body.Width()

	measures := make([]Measure, 0, len(rows)*max(width-1, 0))
	for c := 1; c < width; c++ {
		from, typ := splitColumnLabel(cellAt(origins, c) + "_" + cellAt(types, c))
		for _, row := range rows {
			measures = append(measures, Measure{
				FlowKey: FlowKey{
					To:   strings.ToLower(cellAt(row, 0)),
					From: from,
				},
				Type:  typ,
				Value: cellAt(row, c),
			})
		}
	}
	return measures, nil
}

// splitColumnLabel lowercases a composite "<origin>_<type>" column label and
// splits it on the first underscore.
func splitColumnLabel(label string) (from, typ string) {
	from, typ, _ = strings.Cut(strings.ToLower(label), "_")
	return from, typ
}

// EstimateResult is the outcome of resolving measures into flows.
type EstimateResult struct {
	Flows []Flow
	// NADropped counts estimate rows dropped because a cell was missing or
	// held NASentinel.
	NADropped int
}

// ResolveEstimates keeps only estimate measures and casts them to integer
// counts. Under a layout with DropNA, sentinel and empty cells are dropped
// first; otherwise any non-integer cell, empty included, fails with
// ErrValueCast.
func ResolveEstimates(measures []Measure, layout MigrationLayout) (EstimateResult, error) {
	var res EstimateResult
	res.Flows = make([]Flow, 0, len(measures)/2)
	for _, m := range measures {
		if m.Type != ValueTypeEstimate {
			continue
		}
		value := m.Value
		if layout.DropNA {
			if strings.Contains(value, NASentinel) {
				value = ""
			}
			if isMissing(value) || isMissing(m.To) {
				res.NADropped++
				continue
			}
		}
		n, err := ParseCount(value)
		if err != nil {
			return EstimateResult{}, fmt.Errorf("estimate to %q from %q: %w", m.To, m.From, err)
		}
		res.Flows = append(res.Flows, Flow{FlowKey: m.FlowKey, Estimate: n})
	}
	return res, nil
}

var (
	errNotIntegral = errors.New("not integral")
	errNegative    = errors.New("negative count")
)

// ParseCount parses a count cell. Thousands separators are ignored and an
// integral float rendering ("1234.0") is accepted. Counts are never negative,
// so a leading minus sign fails like any other bad cell.
func ParseCount(cell string) (int64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if s == "" {
		return 0, fmt.Errorf("%w: empty cell", ErrValueCast)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		var f float64
		f, err = strconv.ParseFloat(s, 64)
		// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
		if err == nil && (math.Trunc(f) != f || f >= math.MaxInt64 || f < math.MinInt64) {
			err = errNotIntegral
		}
		n = int64(f)
	}
	if err == nil && n < 0 {
		err = errNegative
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrValueCast, cell, err)
	}
	return n, nil
}
