// Package config loads process-wide tracker defaults and logging settings
// from a file and INVIEW_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/AnatoleLucet/inview"
)

const (
	EnvRootMargin = "INVIEW_ROOT_MARGIN"
	EnvThreshold  = "INVIEW_THRESHOLD"
	EnvLogLevel   = "INVIEW_LOG_LEVEL"
)

type Config struct {
	RootMargin string    `yaml:"rootMargin" toml:"rootMargin"`
	Threshold  []float64 `yaml:"threshold" toml:"threshold"`
	LogLevel   string    `yaml:"logLevel" toml:"logLevel"`
}

func Default() Config {
	return Config{
		RootMargin: inview.DefaultRootMargin,
		Threshold:  []float64{0},
		LogLevel:   "warn",
	}
}

// Load reads path, chosen by extension, over Default and then applies the
// environment.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".json":
		err = decodeJSON(data, &cfg)
	default:
		err = errors.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "decoding %s", path)
	}

	return FromEnv(cfg)
}

func decodeJSON(data []byte, cfg *Config) error {
	if !gjson.ValidBytes(data) {
		return errors.New("invalid json")
	}

	doc := gjson.ParseBytes(data)

	if v := doc.Get("rootMargin"); v.Exists() {
		cfg.RootMargin = v.String()
	}
	if v := doc.Get("threshold"); v.Exists() {
		cfg.Threshold = nil
		if v.IsArray() {
			for _, t := range v.Array() {
				cfg.Threshold = append(cfg.Threshold, t.Float())
			}
		} else {
			cfg.Threshold = []float64{v.Float()}
		}
	}
	if v := doc.Get("logLevel"); v.Exists() {
		cfg.LogLevel = v.String()
	}

	return nil
}

// FromEnv overrides cfg with any INVIEW_* variables that are set.
func FromEnv(cfg Config) (Config, error) {
	if v, ok := os.LookupEnv(EnvRootMargin); ok {
		cfg.RootMargin = v
	}

	if v, ok := os.LookupEnv(EnvThreshold); ok {
		thresholds, err := parseThresholds(v)
		if err != nil {
			return cfg, errors.Wrapf(err, "%s should be a comma separated list of ratios", EnvThreshold)
		}
		cfg.Threshold = thresholds
	}

	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		cfg.LogLevel = v
	}

	return cfg, nil
}

func parseThresholds(s string) ([]float64, error) {
	var out []float64

	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		t, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, nil
}

// Logger builds a JSON logger at the configured level, errors to stderr and
// everything else to stdout.
func (c Config) Logger() (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if c.LogLevel != "" {
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return nil, errors.Wrapf(err, "log level %q", c.LogLevel)
		}
	}

	isError := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel && lvl >= level
	})
	isInfo := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl < zapcore.ErrorLevel && lvl >= level
	})

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), isError),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), isInfo),
	)

	return zap.New(core, zap.AddCaller()), nil
}

// Apply installs cfg as the tracker defaults and logger.
func Apply(cfg Config) error {
	log, err := cfg.Logger()
	if err != nil {
		return err
	}

	inview.SetDefaults(inview.Defaults{
		RootMargin: cfg.RootMargin,
		Threshold:  cfg.Threshold,
	})
	inview.SetLogger(log)

	return nil
}
