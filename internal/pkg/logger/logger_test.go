package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(&bytes.Buffer{})
		SetRedactPII(true)
		SetLevel(ParseLevel("info"))
	})
	return &buf
}

func TestRedactsEmailFields(t *testing.T) {
	buf := capture(t)
	SetRedactPII(true)

	Info("sent", "recipient", "john.doe@example.com", "note", "cc jane@corp.io please")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "jo***@example.com", entry["recipient"])
	assert.Equal(t, "cc ja***@corp.io please", entry["note"])
	assert.Equal(t, "sent", entry["msg"])
}

func TestRedactionDisabled(t *testing.T) {
	buf := capture(t)
	SetRedactPII(false)

	Info("sent", "email", "john.doe@example.com")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "john.doe@example.com", entry["email"])
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t)
	SetLevel(ParseLevel("warn"))

	Info("hidden")
	assert.Zero(t, buf.Len())

	Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestRedactEmail(t *testing.T) {
	assert.Equal(t, "jo***@example.com", RedactEmail("john.doe@example.com"))
	assert.Equal(t, "***@example.com", RedactEmail("ab@example.com"))
	assert.Equal(t, "***@***", RedactEmail("not-an-email"))
}
