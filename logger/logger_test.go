package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	require.NotNil(t, l)
	assert.Equal(t, "test-svc", l.service)
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := &Config{Level: "invalid-level", Format: FormatJSON, Output: "discard"}
	assert.NotNil(t, New(cfg, "test"), "logger is created even with an invalid level")
}

func TestNewWithWriter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "debug", Format: FormatJSON}, "svc", &buf)

	l.WithComponent("stream").Info("stage ready", Fields(FieldStage, "filter", FieldCount, 2))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got), "output %q", buf.String())
	assert.Equal(t, "svc", got[FieldService])
	assert.Equal(t, "stream", got[FieldComponent])
	assert.Equal(t, "filter", got[FieldStage])
	assert.Equal(t, "stage ready", got["message"])
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "warn", Format: FormatJSON}, "svc", &buf)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: FormatJSON}, "svc", &buf)
	l.WithError(errors.New("boom")).Error("failed")
	assert.Contains(t, buf.String(), `"error":"boom"`)
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		l := Nop()
		l.Info("nothing")
		l.WithComponent("x").Error("nothing")
	})
}

func TestGetGlobalLoggerDefault(t *testing.T) {
	globalLogger = nil
	assert.NotNil(t, GetGlobalLogger())
}

func TestSetGlobalLogger(t *testing.T) {
	l := NewDefault("custom")
	SetGlobalLogger(l)
	assert.Same(t, l, GetGlobalLogger())
}

func TestRegistry_GetCaches(t *testing.T) {
	Reset()
	SetGlobalLogger(Nop())
	assert.Same(t, Get("stream"), Get("stream"), "component logger is cached")

	custom := Nop()
	Register("stream", custom)
	assert.Same(t, custom, Get("stream"), "registered logger wins")
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, FormatConsole, cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.True(t, cfg.Timestamp)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"valid console", Config{Level: "debug", Format: "console"}, false},
		{"invalid level", Config{Level: "bad", Format: "json"}, true},
		{"invalid format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "ignored", "dangling")
	assert.Len(t, m, 2)
	assert.Equal(t, 1, m["a"])
	assert.Equal(t, "two", m["b"])

	ef := ErrorFields("op", errors.New("x"))
	assert.Equal(t, "op", ef[FieldOperation])
	assert.Equal(t, "x", ef[FieldError])
}

func TestString(t *testing.T) {
	assert.Equal(t, "<nil>", String(nil))
	assert.Equal(t, "a", String("a"))
	assert.Equal(t, "b", String([]byte("b")))
	assert.Equal(t, "3", String(3))
}
