package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/AnatoleLucet/inview"
)

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	want := Config{RootMargin: "10px 0px", Threshold: []float64{0.25, 1}, LogLevel: "debug"}

	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, "inview.yaml", "rootMargin: 10px 0px\nthreshold: [0.25, 1]\nlogLevel: debug\n")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, want, cfg)
	})

	t.Run("toml", func(t *testing.T) {
		path := writeFile(t, "inview.toml", "rootMargin = \"10px 0px\"\nthreshold = [0.25, 1.0]\nlogLevel = \"debug\"\n")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, want, cfg)
	})

	t.Run("json", func(t *testing.T) {
		path := writeFile(t, "inview.json", `{"rootMargin": "10px 0px", "threshold": [0.25, 1], "logLevel": "debug"}`)

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, want, cfg)
	})

	t.Run("json single threshold", func(t *testing.T) {
		path := writeFile(t, "inview.json", `{"threshold": 0.5}`)

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []float64{0.5}, cfg.Threshold)
		assert.Equal(t, "0px", cfg.RootMargin)
	})

	t.Run("missing keys keep defaults", func(t *testing.T) {
		path := writeFile(t, "inview.yml", "logLevel: info\n")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, Config{RootMargin: "0px", Threshold: []float64{0}, LogLevel: "info"}, cfg)
	})

	t.Run("unknown extension", func(t *testing.T) {
		path := writeFile(t, "inview.ini", "")

		_, err := Load(path)
		assert.ErrorContains(t, err, "unsupported config format")
	})

	t.Run("invalid json", func(t *testing.T) {
		path := writeFile(t, "inview.json", `{"threshold": [`)

		_, err := Load(path)
		assert.ErrorContains(t, err, "invalid json")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("environment wins over the file", func(t *testing.T) {
		t.Setenv(EnvRootMargin, "1px")
		t.Setenv(EnvThreshold, "0.5, 0.75")

		path := writeFile(t, "inview.yaml", "rootMargin: 10px\nthreshold: [1]\n")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "1px", cfg.RootMargin)
		assert.Equal(t, []float64{0.5, 0.75}, cfg.Threshold)
	})
}

func TestFromEnv(t *testing.T) {
	t.Run("leaves unset values alone", func(t *testing.T) {
		cfg, err := FromEnv(Default())
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("rejects a malformed threshold", func(t *testing.T) {
		t.Setenv(EnvThreshold, "0.5,half")

		_, err := FromEnv(Default())
		assert.ErrorContains(t, err, EnvThreshold)
	})

	t.Run("log level", func(t *testing.T) {
		t.Setenv(EnvLogLevel, "error")

		cfg, err := FromEnv(Default())
		require.NoError(t, err)
		assert.Equal(t, "error", cfg.LogLevel)
	})
}

func TestLogger(t *testing.T) {
	t.Run("honours the level", func(t *testing.T) {
		log, err := Config{LogLevel: "error"}.Logger()
		require.NoError(t, err)

		assert.False(t, log.Core().Enabled(zapcore.WarnLevel))
		assert.True(t, log.Core().Enabled(zapcore.ErrorLevel))
	})

	t.Run("defaults to warn", func(t *testing.T) {
		log, err := Config{}.Logger()
		require.NoError(t, err)

		assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
		assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	})

	t.Run("rejects unknown levels", func(t *testing.T) {
		_, err := Config{LogLevel: "loud"}.Logger()
		assert.Error(t, err)
	})
}

func TestApply(t *testing.T) {
	t.Cleanup(func() {
		inview.SetDefaults(inview.Defaults{})
		inview.SetLogger(nil)
	})

	err := Apply(Config{RootMargin: "4px", Threshold: []float64{1, 0.5}, LogLevel: "warn"})
	require.NoError(t, err)

	assert.Equal(t, inview.Defaults{RootMargin: "4px", Threshold: []float64{0.5, 1}}, inview.CurrentDefaults())
}
