package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/couchcryptid/census-migration-etl/internal/domain"
)

var (
	flowColumns    = []string{"to", "from", "year", "estimate", "pop_from_lag1", "pop_to"}
	measureColumns = []string{"to", "from", "year", "type", "value", "pop_from_lag1", "pop_to"}
)

func flowCells(f domain.Flow) []string {
	return []string{f.To, f.From, strconv.Itoa(f.Year), strconv.FormatInt(f.Estimate, 10), optional(f.PopFromLag1), optional(f.PopTo)}
}

func measureCells(m domain.Measure) []string {
	return []string{m.To, m.From, strconv.Itoa(m.Year), m.Type, m.Value, optional(m.PopFromLag1), optional(m.PopTo)}
}

// writePreview prints rows as an aligned table or as a JSON array.
func writePreview[T any](w io.Writer, format string, rows []T, columns []string, cells func(T) []string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if rows == nil {
			rows = []T{}
		}
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(cells(r), "\t"))
	}
	return tw.Flush()
}

func optional(n *int64) string {
	if n == nil {
		return "-"
	}
	return strconv.FormatInt(*n, 10)
}
