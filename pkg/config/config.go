// Package config loads typeshape settings from a TOML file.
//
// A missing file is not an error: every field has a default, and the file
// only needs to name what it changes.
//
//	[normalize]
//	strict = true
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
// TYPESHAPE_REDIS_ADDR and TYPESHAPE_MONGO_URI override the file so that
// credentials can stay out of it.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/typeshape/pkg/errors"
	"github.com/matzehuels/typeshape/pkg/normalize"
	"github.com/matzehuels/typeshape/pkg/typedoc"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "typeshape.toml"

// Environment overrides.
const (
	EnvRedisAddr = "TYPESHAPE_REDIS_ADDR"
	EnvMongoURI  = "TYPESHAPE_MONGO_URI"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Store backends.
const (
	StoreFile  = "file"
	StoreMongo = "mongo"
)

// Config is the full set of settings.
type Config struct {
	Normalize Normalize `toml:"normalize"`
	Cache     Cache     `toml:"cache"`
	Store     Store     `toml:"store"`
	Server    Server    `toml:"server"`
}

// Normalize configures the normalizer and project loading.
type Normalize struct {
	Strict           bool `toml:"strict"`
	MaxDepth         int  `toml:"max_depth"`
	DereferenceDepth int  `toml:"dereference_depth"`
	MaxNodes         int  `toml:"max_nodes"`
}

// Cache selects and configures the pipeline cache.
type Cache struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	TTL       string `toml:"ttl"`
	RedisAddr string `toml:"redis_addr"`
}

// Store selects and configures the schema record store.
type Store struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Normalize: Normalize{
			MaxDepth:         normalize.DefaultMaxDepth,
			DereferenceDepth: typedoc.DefaultDereferenceDepth,
			MaxNodes:         normalize.DefaultMaxNodes,
		},
		Cache: Cache{
			Backend: CacheFile,
			TTL:     "168h",
		},
		Store: Store{
			Backend:       StoreFile,
			MongoDatabase: "typeshape",
		},
		Server: Server{
			Addr: ":8080",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path reads FileName from the working
// directory if it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = FileName
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", filepath.Base(path))
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Store.MongoURI = v
	}
}

// Validate checks enum fields and limits.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend %q requires redis_addr", CacheRedis)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if _, err := c.Cache.TTLDuration(); err != nil {
		return err
	}

	switch c.Store.Backend {
	case StoreFile:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store backend %q requires mongo_uri", StoreMongo)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q (must be one of: file, mongo)", c.Store.Backend)
	}

	if c.Normalize.MaxDepth < 0 || c.Normalize.DereferenceDepth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "depth limits must not be negative")
	}
	if c.Normalize.MaxNodes < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_nodes must not be negative")
	}
	return nil
}

// TTLDuration parses TTL. An empty TTL means no expiry.
func (c Cache) TTLDuration() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "invalid cache ttl %q", c.TTL)
	}
	return d, nil
}
