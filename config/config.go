// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads the configuration of an actionx client from a
// YAML file and the environment, and turns it into the client's
// collaborators: retry policy, response cache store, token endpoint
// and logger.
//
// Environment variables override the file. A variable named
// PREFIX_SECTION__KEY sets section.key; for example, with prefix
// "ACTIONX_", ACTIONX_CACHE__TTL=10s sets cache.ttl.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gogama/actionx/cache"
	"github.com/gogama/actionx/retry"
	"github.com/gogama/actionx/token"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Config is the configuration of a client.
type Config struct {
	// BaseURL is resolved against relative operation paths.
	BaseURL string `koanf:"base_url"`
	// Timeout is the default per-attempt timeout. Zero means none.
	Timeout time.Duration `koanf:"timeout"`
	Retry   RetryConfig   `koanf:"retry"`
	Cache   CacheConfig   `koanf:"cache"`
	Token   TokenConfig   `koanf:"token"`
	Log     LogConfig     `koanf:"log"`
}

// RetryConfig configures the default retry behavior.
type RetryConfig struct {
	// MaxAttempts is the number of retries after the initial attempt.
	MaxAttempts int           `koanf:"max_attempts"`
	BaseDelay   time.Duration `koanf:"base_delay"`
	MaxDelay    time.Duration `koanf:"max_delay"`
}

// CacheConfig selects the response cache store.
type CacheConfig struct {
	// Backend is "memory", "redis" or "none".
	Backend string        `koanf:"backend"`
	TTL     time.Duration `koanf:"ttl"`
	Redis   RedisConfig   `koanf:"redis"`
}

// RedisConfig configures the Redis cache store.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	DB       int    `koanf:"db"`
	Password string `koanf:"password"`
	Prefix   string `koanf:"prefix"`
}

// TokenConfig configures the OAuth 2.0 token endpoint. Token handling
// is disabled when URL is empty.
type TokenConfig struct {
	URL          string        `koanf:"url"`
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	Scopes       []string      `koanf:"scopes"`
	Skew         time.Duration `koanf:"skew"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `koanf:"level"`
}

var defaults = map[string]interface{}{
	"timeout":            "5s",
	"retry.max_attempts": 0,
	"retry.base_delay":   "50ms",
	"retry.max_delay":    "1s",
	"cache.backend":      "memory",
	"cache.ttl":          "1m",
	"cache.redis.prefix": "actionx:",
	"token.skew":         "30s",
	"log.level":          "info",
}

// Load reads the YAML file at path, if it exists, then the environment
// variables starting with prefix, and fills in defaults for anything
// still unset. An empty path skips the file. The result is validated.
func Load(path, prefix string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("actionx/config: loading %s: %w", path, err)
		}
	}

	if prefix != "" {
		if err := k.Load(env.Provider(prefix, ".", func(s string) string {
			return strings.Replace(strings.ToLower(strings.TrimPrefix(s, prefix)), "__", ".", -1)
		}), nil); err != nil {
			return nil, fmt.Errorf("actionx/config: loading environment: %w", err)
		}
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			if err := k.Set(key, value); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("actionx/config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var problems []error
	if c.BaseURL != "" {
		if u, err := url.Parse(c.BaseURL); err != nil || !u.IsAbs() {
			problems = append(problems, fmt.Errorf("base_url %q is not an absolute URL", c.BaseURL))
		}
	}
	if c.Timeout < 0 {
		problems = append(problems, errors.New("timeout may not be negative"))
	}
	if c.Retry.MaxAttempts < 0 {
		problems = append(problems, errors.New("retry.max_attempts may not be negative"))
	}
	if c.Retry.BaseDelay <= 0 || c.Retry.MaxDelay < c.Retry.BaseDelay {
		problems = append(problems, errors.New("retry delays must satisfy 0 < base_delay <= max_delay"))
	}
	switch c.Cache.Backend {
	case "memory", "none":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			problems = append(problems, errors.New("cache.redis.addr is required by the redis backend"))
		}
	default:
		problems = append(problems, fmt.Errorf("unknown cache.backend %q", c.Cache.Backend))
	}
	if c.Token.URL != "" && c.Token.ClientID == "" {
		problems = append(problems, errors.New("token.client_id is required with token.url"))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err)
	}
	if len(problems) > 0 {
		return fmt.Errorf("actionx/config: invalid configuration: %w", errors.Join(problems...))
	}
	return nil
}

// RetryPolicy returns the default retry configuration, with exponential
// backoff between BaseDelay and MaxDelay. It returns nil if MaxAttempts
// is zero.
func (c *Config) RetryPolicy() *retry.Config {
	if c.Retry.MaxAttempts == 0 {
		return nil
	}
	return &retry.Config{
		MaxAttempts: c.Retry.MaxAttempts,
		Policy:      retry.NewPolicy(retry.DefaultDecider, retry.NewExpWaiter(c.Retry.BaseDelay, c.Retry.MaxDelay, time.Now())),
	}
}

// Store returns the configured cache store, or nil for the "none"
// backend. The Redis client is created lazily by go-redis, so Store
// does not contact the server.
func (c *Config) Store() cache.Store {
	switch c.Cache.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     c.Cache.Redis.Addr,
			DB:       c.Cache.Redis.DB,
			Password: c.Cache.Redis.Password,
		})
		return cache.NewRedis(client, c.Cache.Redis.Prefix)
	case "memory":
		return cache.NewMemory(c.Cache.TTL)
	}
	return nil
}

// TokenProvider returns a token provider for the configured endpoint,
// sending token requests with doer, or nil if no token URL is set.
func (c *Config) TokenProvider(doer token.Doer, logger logrus.FieldLogger) *token.Provider {
	if c.Token.URL == "" {
		return nil
	}
	endpoint := &token.OAuth2{
		URL:          c.Token.URL,
		ClientID:     c.Token.ClientID,
		ClientSecret: c.Token.ClientSecret,
		Scopes:       c.Token.Scopes,
		Doer:         doer,
	}
	return token.NewProvider(endpoint, token.WithSkew(c.Token.Skew), token.WithLogger(logger))
}

// Logger returns a logrus logger at the configured level.
func (c *Config) Logger() *logrus.Logger {
	l := logrus.New()
	if level, err := logrus.ParseLevel(c.Log.Level); err == nil {
		l.SetLevel(level)
	}
	return l
}
