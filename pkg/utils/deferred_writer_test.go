package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineRecorder struct {
	lines []string
}

func (r *lineRecorder) Write(p []byte) (int, error) {
	r.lines = append(r.lines, string(p))
	return len(p), nil
}

func TestDeferredWriter_FlushesLines(t *testing.T) {
	var d DeferredWriter
	_, _ = d.Write([]byte("first\nsecond\n"))
	_, _ = d.Write([]byte("\nthird"))

	var rec lineRecorder
	require.NoError(t, d.Flush(&rec))

	assert.Equal(t, []string{"first\n", "second\n", "third\n"}, rec.lines)
	assert.Zero(t, d.Len())
}

func TestDeferredWriter_ZerologConsole(t *testing.T) {
	var d DeferredWriter
	log := zerolog.New(&d)
	log.Info().Str("component", "table").Msg("fetched page")
	log.Warn().Msg("fetch failed")

	var out bytes.Buffer
	require.NoError(t, d.Flush(zerolog.ConsoleWriter{Out: &out, NoColor: true}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "INF")
	assert.Contains(t, lines[0], "fetched page")
	assert.Contains(t, lines[0], "component=table")
	assert.Contains(t, lines[1], "WRN")
}
