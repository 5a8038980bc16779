package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false, "")

	log.Debug("hidden")
	log.Info("pair created", "pair_id", "p1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pair created", entry["msg"])
	assert.Equal(t, "p1", entry["pair_id"])
}

func TestNewDevelopmentLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, true, "")

	log.Debug("cycle reset", "cycle_id", "c1")

	assert.Contains(t, buf.String(), "cycle reset")
	assert.Contains(t, buf.String(), "cycle_id=c1")
}
