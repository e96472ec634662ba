package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/aevon-lab/project-idmint/internal/core/partition"
)

// EnvPrefix prefixes environment overrides, e.g. IDMINT_GENERATOR__ENCODING_SALT.
const EnvPrefix = "IDMINT_"

// maxBatchLimit caps generator.max_count so a single response stays bounded.
const maxBatchLimit = 65536

// Config is the top-level application config.
type Config struct {
	Server    ServerConfig    `koanf:"server" yaml:"server"`
	Generator GeneratorConfig `koanf:"generator" yaml:"generator"`
	Storage   StorageConfig   `koanf:"storage" yaml:"storage"`
	Authority AuthorityConfig `koanf:"authority" yaml:"authority"`
}

type ServerConfig struct {
	Port int    `koanf:"port" yaml:"port"`
	Host string `koanf:"host" yaml:"host"`
	Mode string `koanf:"mode" yaml:"mode"` // debug | release

	// TrustPartitionHeader lets X-Partition override the geo headers. Only
	// enable it behind a router that strips the header from client traffic.
	TrustPartitionHeader bool `koanf:"trust_partition_header" yaml:"trust_partition_header"`
}

type GeneratorConfig struct {
	MaxCount     int    `koanf:"max_count" yaml:"max_count"`
	EncodingSalt string `koanf:"encoding_salt" yaml:"encoding_salt"`
	MinLength    int    `koanf:"min_length" yaml:"min_length"`
	Debug        bool   `koanf:"debug" yaml:"debug"`
	ShardMode    string `koanf:"shard_mode" yaml:"shard_mode"`     // authority | hash
	IdleTimeout  string `koanf:"idle_timeout" yaml:"idle_timeout"` // parsed and validated on startup
	MailboxSize  int    `koanf:"mailbox_size" yaml:"mailbox_size"`
}

type StorageConfig struct {
	Type          string `koanf:"type" yaml:"type"` // memory | pebble | postgres
	Path          string `koanf:"path" yaml:"path"`
	Fsync         string `koanf:"fsync" yaml:"fsync"` // always | interval
	FsyncInterval string `koanf:"fsync_interval" yaml:"fsync_interval"`
	DSN           string `koanf:"dsn" yaml:"dsn"`
	MaxOpenConns  int    `koanf:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns  int    `koanf:"max_idle_conns" yaml:"max_idle_conns"`
	AutoMigrate   bool   `koanf:"auto_migrate" yaml:"auto_migrate"`
}

type AuthorityConfig struct {
	Mode    string `koanf:"mode" yaml:"mode"` // local | remote | store
	URL     string `koanf:"url" yaml:"url"`
	Timeout string `koanf:"timeout" yaml:"timeout"`
	// Expose serves the local authority to peers on the internal route.
	Expose bool `koanf:"expose" yaml:"expose"`
}

// ParsedShardMode is the typed generator.shard_mode. Valid after Validate.
func (g GeneratorConfig) ParsedShardMode() partition.ShardMode {
	return partition.ShardMode(g.ShardMode)
}

// IdleTimeoutDuration is the parsed generator.idle_timeout. Valid after Validate.
func (g GeneratorConfig) IdleTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(g.IdleTimeout)
	return d
}

// FsyncIntervalDuration is the parsed storage.fsync_interval. Valid after Validate.
func (s StorageConfig) FsyncIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(s.FsyncInterval)
	return d
}

// TimeoutDuration is the parsed authority.timeout. Valid after Validate.
func (a AuthorityConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(a.Timeout)
	return d
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Generator.EncodingSalt != "" {
		c.Generator.EncodingSalt = "<redacted>"
	}
	if c.Storage.DSN != "" {
		c.Storage.DSN = "<redacted>"
	}
	return c
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if c.Generator.MaxCount <= 0 || c.Generator.MaxCount > maxBatchLimit {
		return fmt.Errorf("invalid generator.max_count %d (must be 1-%d)", c.Generator.MaxCount, maxBatchLimit)
	}
	if c.Generator.MinLength < 0 {
		return fmt.Errorf("generator.min_length must be >= 0")
	}
	if _, err := partition.ParseShardMode(c.Generator.ShardMode); err != nil {
		return fmt.Errorf("invalid generator.shard_mode: %w", err)
	}
	if err := validateDuration("generator.idle_timeout", c.Generator.IdleTimeout); err != nil {
		return err
	}
	if c.Generator.MailboxSize <= 0 {
		return fmt.Errorf("generator.mailbox_size must be > 0")
	}

	switch c.Storage.Type {
	case "memory":
	case "pebble":
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("storage.path is required for pebble storage")
		}
		switch c.Storage.Fsync {
		case "always", "interval":
		default:
			return fmt.Errorf("invalid storage.fsync %q (must be always or interval)", c.Storage.Fsync)
		}
		if err := validateDuration("storage.fsync_interval", c.Storage.FsyncInterval); err != nil {
			return err
		}
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("storage.dsn is required for postgres storage")
		}
		if c.Storage.MaxOpenConns <= 0 {
			return fmt.Errorf("storage.max_open_conns must be > 0")
		}
		if c.Storage.MaxIdleConns <= 0 {
			return fmt.Errorf("storage.max_idle_conns must be > 0")
		}
	default:
		return fmt.Errorf("unsupported storage.type %q", c.Storage.Type)
	}

	if c.Generator.ParsedShardMode() == partition.ShardModeHash {
		// Hash mode never contacts an authority.
		return nil
	}
	switch c.Authority.Mode {
	case "local":
		if c.Storage.Type == "postgres" {
			return fmt.Errorf("authority.mode local is not supported with postgres storage; use store")
		}
	case "remote":
		if strings.TrimSpace(c.Authority.URL) == "" {
			return fmt.Errorf("authority.url is required for remote authority")
		}
		if c.Authority.Expose {
			return fmt.Errorf("authority.expose requires authority.mode local")
		}
	case "store":
		if c.Storage.Type != "postgres" {
			return fmt.Errorf("authority.mode store requires postgres storage")
		}
		if c.Authority.Expose {
			return fmt.Errorf("authority.expose requires authority.mode local")
		}
	default:
		return fmt.Errorf("invalid authority.mode %q (must be local, remote or store)", c.Authority.Mode)
	}
	return validateDuration("authority.timeout", c.Authority.Timeout)
}

func validateDuration(key, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d < 0 {
		return fmt.Errorf("%s must be >= 0", key)
	}
	return nil
}

// Load parses config from defaults, then file, then env, and validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                   8080,
		"server.host":                   "0.0.0.0",
		"server.mode":                   "release",
		"server.trust_partition_header": false,
		"generator.max_count":           8192,
		"generator.encoding_salt":       "",
		"generator.min_length":          0,
		"generator.debug":               false,
		"generator.shard_mode":          "authority",
		"generator.idle_timeout":        "10m",
		"generator.mailbox_size":        64,
		"storage.type":                  "pebble",
		"storage.path":                  "./data/idmint",
		"storage.fsync":                 "always",
		"storage.fsync_interval":        "5ms",
		"storage.dsn":                   "",
		"storage.max_open_conns":        25,
		"storage.max_idle_conns":        25,
		"storage.auto_migrate":          true,
		"authority.mode":                "local",
		"authority.url":                 "",
		"authority.timeout":             "5s",
		"authority.expose":              false,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
