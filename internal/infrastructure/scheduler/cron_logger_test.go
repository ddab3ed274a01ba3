package scheduler

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jhoicas/inventory-alerts/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	return line
}

func TestCronLogger_TickOmitidoVisibleEnDebug(t *testing.T) {
	var buf bytes.Buffer
	cl := cronLogger{log: logger.New(logger.Config{Env: "production", Level: "debug", Out: &buf})}

	cl.Info("skip")

	line := decodeLine(t, &buf)
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "cron: skip", line["message"])
}

func TestCronLogger_ErrorConCampos(t *testing.T) {
	var buf bytes.Buffer
	cl := cronLogger{log: logger.New(logger.Config{Env: "production", Level: "info", Out: &buf})}

	cl.Error(errors.New("boom"), "panic", "job", "check_low_stock")

	line := decodeLine(t, &buf)
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "cron: panic", line["message"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "check_low_stock", line["job"])
}
