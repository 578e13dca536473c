package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel logrus.Level
		wantErr   bool
	}{
		{name: "defaults", wantLevel: logrus.InfoLevel},
		{name: "debug json", level: "debug", format: "JSON", wantLevel: logrus.DebugLevel},
		{name: "warn text", level: "warn", format: "text", wantLevel: logrus.WarnLevel},
		{name: "bad level", level: "loud", wantErr: true},
		{name: "bad format", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.level, tt.format, &bytes.Buffer{})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, log.GetLevel())
		})
	}
}

func TestComponent_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", FormatJSON, &buf)
	require.NoError(t, err)

	Component(log, "shop").WithField("key", "@cart_items").Info("persisted")
	Component(log, "shop").Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "shop", entry["component"])
	assert.Equal(t, "@cart_items", entry["key"])
	assert.Equal(t, "persisted", entry["msg"])
	assert.Equal(t, "info", entry["level"])
}
