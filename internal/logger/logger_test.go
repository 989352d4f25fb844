package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "ParseLevel(%q)", tt.in)
	}
}

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Format: "json", Out: &buf})

	log.Info().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "v", entry["k"])
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New(Options{Level: "debug", Format: "json", Out: &buf}), "ledger")
	ctx := WithContext(context.Background(), log)

	got := FromContext(ctx)
	got.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"component":"ledger"`)
}

func TestFromContextDefaultsToNop(t *testing.T) {
	got := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, got.GetLevel())
}
