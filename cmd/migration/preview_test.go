package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/census-migration-etl/internal/domain"
)

func ptr(n int64) *int64 { return &n }

var previewFlows = []domain.Flow{
	{FlowKey: domain.FlowKey{To: "alaska", From: "alabama", Year: 2012}, Estimate: 1032, PopFromLag1: ptr(4799000), PopTo: ptr(731000)},
	{FlowKey: domain.FlowKey{To: "arizona", From: "alabama", Year: 2012}, Estimate: 2210},
}

func TestWritePreview_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writePreview(&buf, "table", previewFlows, flowColumns, flowCells))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, flowColumns, strings.Fields(lines[0]))
	assert.Equal(t, []string{"alaska", "alabama", "2012", "1032", "4799000", "731000"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"arizona", "alabama", "2012", "2210", "-", "-"}, strings.Fields(lines[2]))
}

func TestWritePreview_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writePreview(&buf, "json", previewFlows, flowColumns, flowCells))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "alaska", got[0]["to"])
	assert.InDelta(t, 2012, got[0]["year"], 0)
	assert.InDelta(t, 731000, got[0]["pop_to"], 0)
	assert.Nil(t, got[1]["pop_to"])
}

func TestWritePreview_EmptyJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writePreview[domain.Flow](&buf, "json", nil, flowColumns, flowCells))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWritePreview_Measures(t *testing.T) {
	measures := []domain.Measure{
		{FlowKey: domain.FlowKey{To: "alaska", From: "alabama", Year: 2012}, Type: "moe", Value: "104"},
	}
	var buf bytes.Buffer
	require.NoError(t, writePreview(&buf, "table", measures, measureColumns, measureCells))
	assert.Contains(t, buf.String(), "moe")
	assert.Contains(t, buf.String(), "104")
}

func TestHead(t *testing.T) {
	assert.Equal(t, []int{1, 2}, head([]int{1, 2, 3}, 2))
	assert.Equal(t, []int{1}, head([]int{1}, 5))
	assert.Empty(t, head([]int{1, 2}, 0))
}
