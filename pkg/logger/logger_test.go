package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-api/pkg/logger"
)

func TestComponent_JSONConNivel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "WARN", Out: &buf})

	log := l.Component("ticket")
	log.Info().Msg("descartado")
	log.Warn().Str("event", "ticket.created").Msg("notificación no entregada")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "ticket", entry["component"])
	assert.Equal(t, "ticket.created", entry["event"])
}

func TestNivelDesconocidoEsInfo(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "verbose", Out: &buf})
	l.Debug().Msg("oculto")
	l.Info().Msg("visible")
	assert.NotContains(t, buf.String(), "oculto")
	assert.Contains(t, buf.String(), "visible")
}
