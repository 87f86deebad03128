// Package config loads engine settings from struct defaults, an
// optional YAML file, and VOLTLOG_ environment variables, layered in
// that order, and builds a ready-to-use logger from the result.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/voltlog/voltlog/core"
	"github.com/voltlog/voltlog/dispatch"
	"github.com/voltlog/voltlog/filter"
	"github.com/voltlog/voltlog/formatter"
	"github.com/voltlog/voltlog/handler"
	"github.com/voltlog/voltlog/logger"
)

// EnvPrefix is stripped from environment variables before they are
// mapped onto config keys. VOLTLOG_FILE_MAX_BYTES sets file.max_bytes.
const EnvPrefix = "VOLTLOG_"

// Config is the full engine configuration. Level fields hold level
// names ("DEBUG" .. "CRITICAL"); empty handler levels inherit the root
// level.
type Config struct {
	Name       string           `koanf:"name"`
	Level      string           `koanf:"level"`
	Console    ConsoleConfig    `koanf:"console"`
	File       FileConfig       `koanf:"file"`
	Sampling   SamplingConfig   `koanf:"sampling"`
	Dispatcher DispatcherConfig `koanf:"dispatcher"`
}

// ConsoleConfig configures the console handler.
type ConsoleConfig struct {
	Enabled bool   `koanf:"enabled"`
	Stream  string `koanf:"stream"`
	Level   string `koanf:"level"`
	Pattern string `koanf:"pattern"`
}

// FileConfig configures the rotating file handler. An empty Path
// disables it.
type FileConfig struct {
	Path        string `koanf:"path"`
	Level       string `koanf:"level"`
	MaxBytes    int64  `koanf:"max_bytes"`
	BackupCount int    `koanf:"backup_count"`
	Atomic      bool   `koanf:"atomic"`
	Pattern     string `koanf:"pattern"`
}

// SamplingConfig configures the keep-every-Nth filter. Rate 0 or 1
// disables sampling.
type SamplingConfig struct {
	Rate int `koanf:"rate"`
}

// DispatcherConfig configures the process-wide async dispatcher.
type DispatcherConfig struct {
	QueueSize     int           `koanf:"queue_size"`
	BatchSize     int           `koanf:"batch_size"`
	FlushInterval time.Duration `koanf:"flush_interval"`
	DrainTimeout  time.Duration `koanf:"drain_timeout"`
}

func defaultConfig() *Config {
	return &Config{
		Name:  "root",
		Level: "INFO",
		Console: ConsoleConfig{
			Enabled: true,
			Stream:  "stdout",
		},
		File: FileConfig{
			MaxBytes:    10 << 20,
			BackupCount: 5,
		},
		Dispatcher: DispatcherConfig{
			QueueSize:     10000,
			BatchSize:     500,
			FlushInterval: 100 * time.Millisecond,
			DrainTimeout:  5 * time.Second,
		},
	}
}

// envTransform maps VOLTLOG_FILE_MAX_BYTES to file.max_bytes. Sections
// are single words, so only the first underscore becomes a delimiter.
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// Load layers defaults, the YAML file at path (skipped when path is
// empty), and VOLTLOG_ environment variables, highest last.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// Validate checks every setting the way Build would use it. All
// failures are construction-time errors; nothing runs degraded.
func (c *Config) Validate() error {
	if _, err := core.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("config: level: %w", err)
	}
	if c.Console.Enabled {
		if _, err := streamFor(c.Console.Stream); err != nil {
			return err
		}
		if err := c.checkHandler("console", c.Console.Level, c.Console.Pattern); err != nil {
			return err
		}
	}
	if c.File.Path != "" {
		if err := c.checkHandler("file", c.File.Level, c.File.Pattern); err != nil {
			return err
		}
		if c.File.MaxBytes < 0 {
			return fmt.Errorf("config: file.max_bytes must not be negative")
		}
		if c.File.BackupCount < 0 {
			return fmt.Errorf("config: file.backup_count must not be negative")
		}
		if c.File.Atomic && c.File.MaxBytes <= 0 {
			return fmt.Errorf("config: file.atomic requires file.max_bytes > 0")
		}
	}
	if c.Sampling.Rate < 0 {
		return fmt.Errorf("config: sampling.rate must not be negative")
	}
	if c.Dispatcher.QueueSize <= 0 || c.Dispatcher.BatchSize <= 0 {
		return fmt.Errorf("config: dispatcher queue_size and batch_size must be positive")
	}
	if c.Dispatcher.FlushInterval <= 0 || c.Dispatcher.DrainTimeout <= 0 {
		return fmt.Errorf("config: dispatcher flush_interval and drain_timeout must be positive")
	}
	return nil
}

func (c *Config) checkHandler(section, level, pattern string) error {
	if level != "" {
		if _, err := core.ParseLevel(level); err != nil {
			return fmt.Errorf("config: %s.level: %w", section, err)
		}
	}
	if pattern != "" {
		if _, err := formatter.NewCompiledFormatter(formatter.Config{Pattern: pattern}); err != nil {
			return fmt.Errorf("config: %s.pattern: %w", section, err)
		}
	}
	return nil
}

func streamFor(name string) (io.Writer, error) {
	switch name {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return nil, fmt.Errorf("config: console.stream must be stdout or stderr, got %q", name)
	}
}

// handlerLevel resolves a handler's level, falling back to the root
// level. Validate has already established both parse.
func (c *Config) handlerLevel(level string) core.Level {
	if level == "" {
		level = c.Level
	}
	lv, _ := core.ParseLevel(level)
	return lv
}

func compiled(pattern string) (formatter.Formatter, error) {
	cfg := formatter.Config{Pattern: pattern}
	return formatter.NewCompiledFormatter(cfg)
}

// Build validates the config, applies the dispatcher settings, and
// constructs the logger with its handlers and filters. Any failure
// aborts construction.
func (c *Config) Build() (*logger.Logger, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	dispatch.SetDefaultOptions(dispatch.Options{
		QueueSize:     c.Dispatcher.QueueSize,
		BatchSize:     c.Dispatcher.BatchSize,
		FlushInterval: c.Dispatcher.FlushInterval,
		DrainTimeout:  c.Dispatcher.DrainTimeout,
	})

	l := logger.New(c.Name)
	rootLevel, _ := core.ParseLevel(c.Level)
	l.SetLevel(rootLevel)

	if c.Console.Enabled {
		stream, _ := streamFor(c.Console.Stream)
		f, err := compiled(c.Console.Pattern)
		if err != nil {
			return nil, err
		}
		console, err := handler.NewConsole(handler.ConsoleConfig{
			Level:     c.handlerLevel(c.Console.Level),
			Stream:    stream,
			Formatter: f,
		})
		if err != nil {
			return nil, err
		}
		l.AddHandler(console)
	}

	if c.File.Path != "" {
		f, err := compiled(c.File.Pattern)
		if err != nil {
			return nil, err
		}
		fc := handler.FileConfig{
			Path:        c.File.Path,
			Level:       c.handlerLevel(c.File.Level),
			MaxBytes:    c.File.MaxBytes,
			BackupCount: c.File.BackupCount,
			Formatter:   f,
		}
		var h handler.Handler
		if c.File.Atomic {
			h, err = handler.NewAtomicFile(fc)
		} else {
			h, err = handler.NewFile(fc)
		}
		if err != nil {
			return nil, err
		}
		l.AddHandler(h)
	}

	if c.Sampling.Rate > 1 {
		s, err := filter.NewSampling(c.Sampling.Rate)
		if err != nil {
			return nil, err
		}
		l.AddFilter(s)
	}

	return l, nil
}
