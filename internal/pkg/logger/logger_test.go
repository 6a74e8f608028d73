package logger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewWithNilConfigUsesDefaults(t *testing.T) {
	log, err := New(nil)
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Equal(t, "info", log.config.Level)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{
			name: "bad level",
			cfg:  &Config{Level: "verbose", Format: "json", Output: "console"},
		},
		{
			name: "bad format",
			cfg:  &Config{Level: "info", Format: "xml", Output: "console"},
		},
		{
			name: "bad output",
			cfg:  &Config{Level: "info", Format: "json", Output: "syslog"},
		},
		{
			name: "file output without filename",
			cfg:  &Config{Level: "info", Format: "json", Output: "file"},
		},
		{
			name: "file output with zero maxsize",
			cfg: &Config{
				Level: "info", Format: "json", Output: "file",
				File: FileConfig{Filename: "x.log", MaxAge: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestNewFileOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		Level:  "debug",
		Format: "json",
		Output: "file",
		File: FileConfig{
			Filename:   filepath.Join(dir, "logs", "test.log"),
			MaxSize:    1,
			MaxAge:     1,
			MaxBackups: 1,
		},
	}

	log, err := New(cfg)
	require.NoError(t, err)
	log.Info("hello")
	require.NoError(t, log.Sync())

	assert.FileExists(t, cfg.File.Filename)
}

func TestNamedAndWithKeepConfig(t *testing.T) {
	log, err := New(&Config{Level: "info", Format: "console", Output: "console"})
	require.NoError(t, err)

	child := log.Named("search").With(zap.String("component", "store"))
	assert.Same(t, log.config, child.config)
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Equal(t, "", GetRequestID(context.Background()))
}

func TestWithContextStampsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := &Logger{Logger: zap.New(core)}

	ctx := WithRequestID(context.Background(), "req-456")
	log.WithContext(ctx).Info("tagged")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Context, 1)
	assert.Equal(t, "request_id", entries[0].Context[0].Key)
	assert.Equal(t, "req-456", entries[0].Context[0].String)
}

func TestWithContextWithoutRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := &Logger{Logger: zap.New(core)}

	log.WithContext(context.Background()).Info("plain")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Context)
}
