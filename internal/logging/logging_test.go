package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Level: "info", JSON: true, Out: &buf})
	t.Cleanup(Discard)

	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	log.Debug().Msg("hidden")
	log.Info().Str("name", "launch").Msg("rendered")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "launch", entry["name"])
	assert.Equal(t, "rendered", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestSetup_DefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{JSON: true, Out: &buf})
	t.Cleanup(Discard)

	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())
}

func TestSetup_UnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Level: "loud", JSON: true, Out: &buf})
	t.Cleanup(Discard)

	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
	assert.Contains(t, buf.String(), "unknown log level")
}

func TestSetup_Console(t *testing.T) {
	var buf bytes.Buffer
	Setup(Options{Level: "debug", NoColor: true, Out: &buf})
	t.Cleanup(Discard)

	log.Debug().Msg("sweep")
	assert.Contains(t, buf.String(), "DBG")
	assert.Contains(t, buf.String(), "sweep")
}
