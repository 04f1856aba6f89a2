// Package config loads the journal's configuration with koanf and
// validates it before the service starts.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	DefaultServerPort = 8080

	// DefaultMaxRequestSize caps request bodies at 1 MiB, far above the
	// largest quote the API accepts.
	DefaultMaxRequestSize = 1 << 20

	// DefaultRequestTimeout bounds each API request. It stays below the
	// default write timeout.
	DefaultRequestTimeout = 25 * time.Second

	// Rolling log file limits, in megabytes, files and days.
	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	// DefaultWidgetGroup is the shared storage group the widget reads from.
	DefaultWidgetGroup = "group.footnote"

	// DefaultWidgetKey is the shared storage key holding the widget payload.
	DefaultWidgetKey = "WidgetContent"
)

// Store drivers.
const (
	StoreDriverMemory = "memory"
	StoreDriverSQLite = "sqlite"
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Store     StoreConfig     `koanf:"store"     validate:"required"`
	Widget    WidgetConfig    `koanf:"widget"    validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=100ms,ltfield=WriteTimeout"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"required,oneof=json text pretty"`

	// RedactContent masks quote text and search input in log attributes.
	RedactContent bool          `koanf:"redact_content"`
	File          LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	Level      string `koanf:"level"       validate:"omitempty,oneof=trace debug info warn error"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true"`
	Insecure     bool    `koanf:"insecure"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// StoreConfig selects where quotes are kept.
type StoreConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=memory sqlite"`
	Path   string `koanf:"path"   validate:"required_if=Driver sqlite"`
}

// WidgetConfig locates the shared slot the home-screen widget reads.
type WidgetConfig struct {
	Dir   string `koanf:"dir"   validate:"required"`
	Group string `koanf:"group" validate:"required,excludesall=/\\"`
	Key   string `koanf:"key"   validate:"required,excludesall=/\\"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "footnote",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  DefaultRequestTimeout.String(),
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.redact_content":   true,
		"log.file.enabled":     false,
		"log.file.level":       "",
		"log.file.path":        "./logs/footnote.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.insecure":      true,
		"telemetry.service_name":  "footnote",
		"telemetry.sampling_rate": 1.0,

		"store.driver": StoreDriverMemory,
		"store.path":   "./data/footnote.db",

		"widget.dir":   "./data/shared",
		"widget.group": DefaultWidgetGroup,
		"widget.key":   DefaultWidgetKey,
	}
}

// envKey maps APP_LOG_FILE_MAX_SIZE to log.file.max_size. Known keys are
// matched first so that underscores inside key names survive; anything else
// falls back to turning every underscore into a dot.
func envKey(known map[string]string) func(string) string {
	return func(s string) string {
		name := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		if key, ok := known[name]; ok {
			return key
		}

		return strings.ReplaceAll(name, "_", ".")
	}
}

func knownEnvKeys() map[string]string {
	d := defaults()
	known := make(map[string]string, len(d))

	for key := range d {
		known[strings.ReplaceAll(key, ".", "_")] = key
	}

	return known
}

const envPrefix = "APP_"

// DefaultDir is where Load looks for base.yaml and the profile files.
const DefaultDir = "configs"

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	dir string
}

// WithDir reads the YAML layers from dir instead of DefaultDir.
func WithDir(dir string) LoadOption {
	return func(o *loadOptions) {
		o.dir = dir
	}
}

// Load layers the configuration, later layers winning:
//
//	defaults < {dir}/base.yaml < {dir}/{profile}.yaml < APP_* environment
//
// Missing YAML files are skipped. The result is not validated; call
// Validate before using it.
func Load(profile string, opts ...LoadOption) (*Config, error) {
	o := loadOptions{dir: DefaultDir}
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	layers := []string{filepath.Join(o.dir, "base.yaml")}
	if profile != "" {
		layers = append(layers, filepath.Join(o.dir, profile+".yaml"))
	}

	for _, path := range layers {
		if err := loadFileIfExists(k, path); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey(knownEnvKeys())), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
