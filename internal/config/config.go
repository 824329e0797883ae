// Package config loads the latentscope configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/latentscope/config.toml
// (or ~/.config/latentscope/config.toml) unless a path is given:
//
//	[explorer]
//	container_id = "vae-demo"
//	min_range = 0
//	max_range = 100
//	data_dir = "https://example.com/vae/"
//
//	[cache]
//	backend = "file"   # file, redis, mongo or none
//	ttl = "720h"
//
//	[server]
//	addr = ":8080"
//
// Command-line flags override file values.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/latentscope/pkg/cache"
	"github.com/matzehuels/latentscope/pkg/errors"
	"github.com/matzehuels/latentscope/pkg/explorer"
)

const (
	appName = "latentscope"

	// DefaultAddr is the listen address of the HTTP server.
	DefaultAddr = ":8080"
	// DefaultTTL bounds how long fetched assets stay in the cache.
	DefaultTTL = 30 * 24 * time.Hour
	// DefaultRedisAddr is used when the redis backend has no address.
	DefaultRedisAddr = "localhost:6379"
	// DefaultMongoDatabase and DefaultMongoCollection name the mongo store.
	DefaultMongoDatabase   = "latentscope"
	DefaultMongoCollection = "assets"
)

// Config is the whole configuration file.
type Config struct {
	Explorer explorer.Settings `toml:"explorer"`
	Cache    Cache             `toml:"cache"`
	Server   Server            `toml:"server"`
	TUI      TUI               `toml:"tui"`

	validated bool
}

// Cache configures the persistent asset cache.
type Cache struct {
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Server configures `latentscope serve`.
type Server struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// TUI configures the terminal host. A terminal cell stands for CellWidth
// by CellHeight canvas pixels.
type TUI struct {
	CellWidth  float64 `toml:"cell_width"`
	CellHeight float64 `toml:"cell_height"`
	Mouse      bool    `toml:"mouse"`
}

// Duration is a time.Duration written as a string ("90s", "720h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid duration %q", text)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Cache:  Cache{Backend: cache.BackendFile},
		Server: Server{Addr: DefaultAddr},
		TUI:    TUI{CellWidth: 8, CellHeight: 16, Mouse: true},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the default cache directory using the XDG layout
// (~/.cache/latentscope).
func CacheDir() (string, error) {
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the file at path on top of [Default]. An empty path means
// [DefaultPath], and a missing default file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return cfg, nil
}

// Decode parses TOML into cfg. Keys not present keep their current value;
// unknown keys are rejected.
func Decode(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// ValidateAndSetDefaults checks the cache and server sections and fills in
// defaults. The explorer section is validated by explorer.New, since its
// sample range may still be resolved from the dataset.
func (c *Config) ValidateAndSetDefaults() error {
	if c.validated {
		return nil
	}
	cc := &c.Cache
	cc.Backend = strings.ToLower(strings.TrimSpace(cc.Backend))
	switch cc.Backend {
	case "":
		cc.Backend = cache.BackendFile
	case cache.BackendFile, cache.BackendRedis, cache.BackendMongo, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", cc.Backend)
	}
	if cc.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must be non-negative")
	}
	if cc.TTL.Duration == 0 {
		cc.TTL.Duration = DefaultTTL
	}
	if cc.Backend == cache.BackendFile && cc.Dir == "" {
		dir, err := CacheDir()
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "resolve cache dir")
		}
		cc.Dir = dir
	}
	if cc.RedisAddr == "" {
		cc.RedisAddr = DefaultRedisAddr
	}
	if cc.MongoDatabase == "" {
		cc.MongoDatabase = DefaultMongoDatabase
	}
	if cc.MongoCollection == "" {
		cc.MongoCollection = DefaultMongoCollection
	}
	if cc.Backend == cache.BackendMongo && cc.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "mongo cache requires mongo_uri")
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 10 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 30 * time.Second
	}

	if c.TUI.CellWidth <= 0 {
		c.TUI.CellWidth = 8
	}
	if c.TUI.CellHeight <= 0 {
		c.TUI.CellHeight = 16
	}
	c.validated = true
	return nil
}

// CacheOptions converts the cache section for cache.Open.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
			Prefix:   c.Cache.RedisPrefix,
		},
		Mongo: cache.MongoOptions{
			URI:        c.Cache.MongoURI,
			Database:   c.Cache.MongoDatabase,
			Collection: c.Cache.MongoCollection,
		},
	}
}
