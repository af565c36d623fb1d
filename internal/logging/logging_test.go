package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONAddsServiceField(t *testing.T) {
	var buf bytes.Buffer
	logger := New("debug", "json", &buf)

	logger.WithField("user", "u1").Debug("draft saved")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "draft saved", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, ServiceName, entry["service"])
	assert.Equal(t, "u1", entry["user"])
	assert.Contains(t, entry, "time")
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	logger := New("loud", "json", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", "TEXT", &buf)
	logger.Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "service="+ServiceName)
}
