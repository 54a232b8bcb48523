package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestApplyEnvOverrides(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want Config
	}{
		{"no overrides", nil, DefaultConfig(ProfileRuntime)},
		{
			"level and format",
			map[string]string{EnvLogLevel: "DEBUG", EnvLogFormat: "json"},
			Config{Level: zerolog.DebugLevel, Format: "json", Timestamp: true},
		},
		{
			"disabled without timestamp",
			map[string]string{EnvLogLevel: "off", EnvLogTimestamp: "false", EnvLogNoColor: "1"},
			Config{Level: zerolog.Disabled, Format: "console", NoColor: true},
		},
		{
			"garbage ignored",
			map[string]string{EnvLogLevel: "loud", EnvLogNoColor: "perhaps", EnvLogFormat: "xml"},
			DefaultConfig(ProfileRuntime),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(ProfileRuntime)
			ApplyEnvOverrides(&cfg, env(tt.vars))
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestDefaultConfig_TestProfile(t *testing.T) {
	cfg := DefaultConfig(ProfileTest)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level)
	assert.False(t, cfg.Timestamp)
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: zerolog.InfoLevel, Format: "json"}, &buf)
	l.Debug().Msg("hidden")
	l.Info().Str("host", "student").Msg("composed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"host":"student"`)
	assert.Contains(t, out, `"message":"composed"`)
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: zerolog.DebugLevel, Format: "console", NoColor: true}, &buf)
	l.Debug().Msg("refused")
	assert.Contains(t, buf.String(), "refused")
	assert.Contains(t, buf.String(), "DBG")
}
