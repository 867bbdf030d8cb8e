// Package config loads the settings of the schemaprune command from defaults, an optional
// YAML file, an optional .env file and SCHEMAPRUNE_ environment variables (highest priority).
package config

// config.go layers the configuration sources with koanf

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/diconium/schemapruner/internal/logging"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix starts the name of every environment variable that is read. The rest of the name is the
// section and key separated by the first underscore, eg SCHEMAPRUNE_SERVER_READ_TIMEOUT is server.read_timeout.
const EnvPrefix = "SCHEMAPRUNE_"

type (
	Config struct {
		Server   Server         `koanf:"server"`
		WS       WS             `koanf:"ws"`
		Upstream Upstream       `koanf:"upstream"`
		Cache    Cache          `koanf:"cache"`
		Log      logging.Config `koanf:"log"`
	}

	Server struct {
		Addr        string        `koanf:"addr"`
		ReadTimeout time.Duration `koanf:"read_timeout"`
		MaxBody     int64         `koanf:"max_body"`
	}

	WS struct {
		ReadLimit      int64         `koanf:"read_limit"`
		InitialTimeout time.Duration `koanf:"initial_timeout"`
	}

	// Upstream says where the schema comes from: a GraphQL endpoint (URL) or a file (Schema)
	Upstream struct {
		URL     string            `koanf:"url"`
		Schema  string            `koanf:"schema"`
		Timeout time.Duration     `koanf:"timeout"`
		Headers map[string]string `koanf:"headers"`
	}

	Cache struct {
		Enabled bool          `koanf:"enabled"`
		TTL     time.Duration `koanf:"ttl"`
	}
)

var defaults = map[string]interface{}{
	"server.addr":         ":8080",
	"server.read_timeout": "30s",
	"server.max_body":     4 << 20,
	"ws.read_limit":       1 << 20,
	"ws.initial_timeout":  "10s",
	"upstream.timeout":    "30s",
	"cache.enabled":       true,
	"cache.ttl":           "5m",
	"log.level":           "info",
	"log.max_size":        100,
	"log.max_backups":     3,
	"log.max_age":         7,
}

// Load builds the configuration. path is the YAML file which may be empty for none.
// dotenv is a .env file, loaded into the environment if it exists, which may be empty for none.
func Load(path, dotenv string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", dotenv, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if c.Upstream.URL != "" && c.Upstream.Schema != "" {
		return nil, errors.New("upstream.url and upstream.schema can't both be set")
	}
	return &c, nil
}

// envKey turns SCHEMAPRUNE_LOG_MAX_SIZE into log.max_size
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}
