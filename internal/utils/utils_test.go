package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerRedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "debug")

	logger.Info("authenticating",
		"api_key", "plain-value",
		"model", "gpt-3.5-turbo",
		"header", "Bearer abc.def",
		"value", "sk-abcdefghijklmnopqrstuvwxyz")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, RedactedValue, entry["api_key"])
	assert.Equal(t, RedactedValue, entry["header"])
	assert.Equal(t, RedactedValue, entry["value"])
	assert.Equal(t, "gpt-3.5-turbo", entry["model"])
}

func TestLoggerRedactsWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "info")

	logger.With("session_secret", "s3cr3t").Info("ready")

	assert.NotContains(t, buf.String(), "s3cr3t")
	assert.Contains(t, buf.String(), RedactedValue)
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "warn")

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("upstream down")
	err := NewBadGatewayError("LLM request failed", cause)

	assert.Equal(t, http.StatusBadGateway, err.StatusCode)
	assert.Equal(t, "LLM request failed", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, GenerateID())
}
