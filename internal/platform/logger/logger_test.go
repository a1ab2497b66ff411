package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("json format honours level", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, "json", "warn")
		log.Info("dropped")
		log.Warn("kept", "procedure_id", 7)

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "kept", line["msg"])
		assert.Equal(t, "municipal", line["service"])
		assert.EqualValues(t, 7, line["procedure_id"])
	})

	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		NewWithWriter(&buf, "text", "debug").Debug("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})
}
