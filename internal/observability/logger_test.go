package observability

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/census-migration-etl/internal/config"
)

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "json", "info").Info("workbook parsed", "year", 2012)
	assert.Contains(t, buf.String(), `"year":2012`)

	buf.Reset()
	newLogger(&buf, "text", "info").Info("workbook parsed", "year", 2012)
	assert.Contains(t, buf.String(), "year=2012")

	buf.Reset()
	newLogger(&buf, "text", "WARN").Info("suppressed")
	assert.Empty(t, buf.String())

	buf.Reset()
	newLogger(&buf, "text", "verbose").Info("kept at info")
	assert.Contains(t, buf.String(), "kept at info")
}

// captureStdout points os.Stdout at a file for the duration of fn and returns
// what was written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), "stdout"))
	require.NoError(t, err)
	defer f.Close()

	orig := os.Stdout
	os.Stdout = f
	defer func() { os.Stdout = orig }()

	fn()

	out, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	return string(out)
}

func TestNewLogger_Destination(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Run("preview disabled logs to stdout", func(t *testing.T) {
		out := captureStdout(t, func() {
			NewLogger(&config.Config{LogLevel: "info", LogFormat: "json"}).Info("no preview")
		})
		assert.Contains(t, out, `"msg":"no preview"`)
	})

	t.Run("preview enabled keeps stdout clean", func(t *testing.T) {
		out := captureStdout(t, func() {
			logger := NewLogger(&config.Config{LogLevel: "info", LogFormat: "json", PreviewRows: 5})
			logger.Info("to stderr")
			assert.Same(t, logger, slog.Default())
		})
		assert.Empty(t, out)
	})
}
