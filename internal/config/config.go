// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"firestige.xyz/dissector/internal/core"
)

// GlobalConfig represents the top-level configuration.
// Maps to the `dissector:` root key in YAML.
type GlobalConfig struct {
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Capture   CaptureConfig   `mapstructure:"capture"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Reporters ReportersConfig `mapstructure:"reporters"`

	// Protocols holds free-form settings per protocol name, decoded by
	// each protocol into its own options struct.
	Protocols map[string]map[string]any `mapstructure:"protocols"`
}

// ─── Engine ───

// EngineConfig configures the dissection engine.
type EngineConfig struct {
	MaxDepth     int  `mapstructure:"max_depth"`     // 0 = engine default
	AuditUnknown bool `mapstructure:"audit_unknown"` // note unknown opcodes and sub-protocols
}

// ─── Capture ───

// CaptureConfig selects where frames come from.
type CaptureConfig struct {
	Source       string `mapstructure:"source"` // file | live | afpacket
	Path         string `mapstructure:"path"`   // capture file for source=file
	Interface    string `mapstructure:"interface"`
	Snaplen      int    `mapstructure:"snaplen"`
	Promiscuous  bool   `mapstructure:"promiscuous"`
	BPFFilter    string `mapstructure:"bpf_filter"`
	Timeout      string `mapstructure:"timeout"`        // live read timeout, e.g. "500ms"
	BufferSizeMB int    `mapstructure:"buffer_size_mb"` // afpacket ring size
	FanoutID     uint16 `mapstructure:"fanout_id"`      // afpacket fanout group, 0 = none
}

// ─── Pipeline ───

// PipelineConfig sizes the worker pool between source and reporters.
type PipelineConfig struct {
	Workers    int    `mapstructure:"workers"`     // 0 = GOMAXPROCS
	BufferSize int    `mapstructure:"buffer_size"` // per-worker queue capacity
	NodeTTL    string `mapstructure:"node_ttl"`    // Art-Net node directory expiry
}

// ─── Reporters ───

// ReportersConfig holds the output configurations.
type ReportersConfig struct {
	Console ConsoleReporterConfig `mapstructure:"console"`
	Kafka   KafkaReporterConfig   `mapstructure:"kafka"`
}

// ConsoleReporterConfig configures printing of dissected packets.
type ConsoleReporterConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Format  string `mapstructure:"format"` // text | json | yaml
	HexDump bool   `mapstructure:"hexdump"`
}

// KafkaReporterConfig configures publishing of dissected packets.
type KafkaReporterConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	Brokers         []string `mapstructure:"brokers"`
	Topic           string   `mapstructure:"topic"`
	Compression     string   `mapstructure:"compression"` // none | gzip | snappy | lz4 | zstd
	BatchSize       int      `mapstructure:"batch_size"`
	BatchTimeout    string   `mapstructure:"batch_timeout"`
	MaxMessageBytes int      `mapstructure:"max_message_bytes"`
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// ─── Log ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string           `mapstructure:"level"`  // debug / info / warn / error
	Format  string           `mapstructure:"format"` // json / text
	Outputs LogOutputsConfig `mapstructure:"outputs"`
}

// LogOutputsConfig contains structured log output destinations.
type LogOutputsConfig struct {
	File FileOutputConfig `mapstructure:"file"`
}

// FileOutputConfig configures file log output.
type FileOutputConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Path     string         `mapstructure:"path"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`  // MB
	MaxAgeDays int  `mapstructure:"max_age_days"` // Days
	MaxBackups int  `mapstructure:"max_backups"`
	Compress   bool `mapstructure:"compress"`
}

// ─── Loading ───

// configRoot is the top-level wrapper matching the YAML structure `dissector: ...`.
type configRoot struct {
	Dissector GlobalConfig `mapstructure:"dissector"`
}

// Load loads configuration from file. An empty path yields the defaults,
// still subject to environment overrides.
// The YAML file uses `dissector:` as root key; env vars use the DISSECTOR_ prefix (e.g., DISSECTOR_LOG_LEVEL).
func Load(path string) (*GlobalConfig, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// The `dissector.` key prefix maps to `DISSECTOR_` in env vars via the
	// key replacer (key "dissector.log.level" → env "DISSECTOR_LOG_LEVEL").
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Dissector

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets default values for configuration.
// All keys use "dissector." prefix to match the YAML root wrapper.
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("dissector.log.level", "info")
	v.SetDefault("dissector.log.format", "text")
	v.SetDefault("dissector.log.outputs.file.enabled", false)
	v.SetDefault("dissector.log.outputs.file.path", "/var/log/dissector/dissector.log")
	v.SetDefault("dissector.log.outputs.file.rotation.max_size_mb", 100)
	v.SetDefault("dissector.log.outputs.file.rotation.max_age_days", 30)
	v.SetDefault("dissector.log.outputs.file.rotation.max_backups", 5)
	v.SetDefault("dissector.log.outputs.file.rotation.compress", true)

	// Metrics defaults
	v.SetDefault("dissector.metrics.enabled", false)
	v.SetDefault("dissector.metrics.listen", ":9091")
	v.SetDefault("dissector.metrics.path", "/metrics")

	// Engine defaults
	v.SetDefault("dissector.engine.max_depth", 8)
	v.SetDefault("dissector.engine.audit_unknown", false)

	// Capture defaults
	v.SetDefault("dissector.capture.source", "file")
	v.SetDefault("dissector.capture.snaplen", 65535)
	v.SetDefault("dissector.capture.promiscuous", true)
	v.SetDefault("dissector.capture.bpf_filter", "udp")
	v.SetDefault("dissector.capture.timeout", "500ms")
	v.SetDefault("dissector.capture.buffer_size_mb", 8)

	// Pipeline defaults
	v.SetDefault("dissector.pipeline.workers", 0)
	v.SetDefault("dissector.pipeline.buffer_size", 1024)
	v.SetDefault("dissector.pipeline.node_ttl", "30s")

	// Reporter defaults
	v.SetDefault("dissector.reporters.console.enabled", true)
	v.SetDefault("dissector.reporters.console.format", "text")
	v.SetDefault("dissector.reporters.console.hexdump", false)
	v.SetDefault("dissector.reporters.kafka.enabled", false)
	v.SetDefault("dissector.reporters.kafka.topic", "dissector-packets")
	v.SetDefault("dissector.reporters.kafka.compression", "snappy")
	v.SetDefault("dissector.reporters.kafka.batch_size", 100)
	v.SetDefault("dissector.reporters.kafka.batch_timeout", "1s")
	v.SetDefault("dissector.reporters.kafka.max_message_bytes", 1048576)
}

var (
	logLevels      = []string{"debug", "info", "warn", "error"}
	logFormats     = []string{"json", "text"}
	captureSources = []string{"file", "live", "afpacket"}
	exportFormats  = []string{"text", "json", "yaml"}
	compressions   = []string{"none", "gzip", "snappy", "lz4", "zstd"}
)

// ValidateAndApplyDefaults validates configuration and applies runtime defaults.
func (cfg *GlobalConfig) ValidateAndApplyDefaults() error {
	// ── Log validation ──
	if !slices.Contains(logLevels, cfg.Log.Level) {
		return invalid("invalid log level: %s (must be debug/info/warn/error)", cfg.Log.Level)
	}
	if !slices.Contains(logFormats, cfg.Log.Format) {
		return invalid("invalid log format: %s (must be json/text)", cfg.Log.Format)
	}

	// ── Engine ──
	if cfg.Engine.MaxDepth < 0 {
		return invalid("engine.max_depth must not be negative: %d", cfg.Engine.MaxDepth)
	}

	// ── Capture ──
	if !slices.Contains(captureSources, cfg.Capture.Source) {
		return invalid("invalid capture.source: %s (must be file/live/afpacket)", cfg.Capture.Source)
	}
	if cfg.Capture.Source == "afpacket" && cfg.Capture.BufferSizeMB <= 0 {
		return invalid("capture.buffer_size_mb must be positive: %d", cfg.Capture.BufferSizeMB)
	}
	if cfg.Capture.Snaplen <= 0 {
		return invalid("capture.snaplen must be positive: %d", cfg.Capture.Snaplen)
	}
	if _, err := parseDuration("capture.timeout", cfg.Capture.Timeout); err != nil {
		return err
	}

	// ── Pipeline ──
	if cfg.Pipeline.Workers < 0 {
		return invalid("pipeline.workers must not be negative: %d", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.Workers == 0 {
		cfg.Pipeline.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Pipeline.BufferSize <= 0 {
		return invalid("pipeline.buffer_size must be positive: %d", cfg.Pipeline.BufferSize)
	}
	if _, err := parseDuration("pipeline.node_ttl", cfg.Pipeline.NodeTTL); err != nil {
		return err
	}

	// ── Reporters ──
	if !slices.Contains(exportFormats, cfg.Reporters.Console.Format) {
		return invalid("invalid reporters.console.format: %s (must be text/json/yaml)", cfg.Reporters.Console.Format)
	}
	if k := &cfg.Reporters.Kafka; k.Enabled {
		if len(k.Brokers) == 0 {
			return invalid("reporters.kafka.brokers is required when reporters.kafka.enabled=true")
		}
		if k.Topic == "" {
			return invalid("reporters.kafka.topic is required when reporters.kafka.enabled=true")
		}
		if !slices.Contains(compressions, k.Compression) {
			return invalid("unsupported reporters.kafka.compression: %s", k.Compression)
		}
		if _, err := parseDuration("reporters.kafka.batch_timeout", k.BatchTimeout); err != nil {
			return err
		}
	}
	return nil
}

// Duration parses a duration setting that has already been validated.
func Duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func parseDuration(key, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, invalid("invalid %s %q: %v", key, s, err)
	}
	if d < 0 {
		return 0, invalid("%s must not be negative: %s", key, s)
	}
	return d, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), core.ErrConfigInvalid)
}
