// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogama/actionx/cache"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "actionx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Timeout: 5 * time.Second,
		Retry:   RetryConfig{BaseDelay: 50 * time.Millisecond, MaxDelay: time.Second},
		Cache:   CacheConfig{Backend: "memory", TTL: time.Minute, Redis: RedisConfig{Prefix: "actionx:"}},
		Token:   TokenConfig{Skew: 30 * time.Second},
		Log:     LogConfig{Level: "info"},
	}, cfg)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Cache.Backend)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeFile(t, `
base_url: https://api.example.com/v1
timeout: 2s
retry:
  max_attempts: 3
cache:
  backend: redis
  ttl: 10s
  redis:
    addr: localhost:6379
    db: 2
token:
  url: https://auth.example.com/token
  client_id: svc
  scopes: [read, write]
log:
  level: debug
`)
	t.Setenv("ACTIONXTEST_TOKEN__CLIENT_SECRET", "s3cret")
	t.Setenv("ACTIONXTEST_CACHE__TTL", "30s")
	t.Setenv("ACTIONXTEST_RETRY__MAX_DELAY", "5s")

	cfg, err := Load(path, "ACTIONXTEST_")

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1", cfg.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, RetryConfig{MaxAttempts: 3, BaseDelay: 50 * time.Millisecond, MaxDelay: 5 * time.Second}, cfg.Retry)
	assert.Equal(t, CacheConfig{
		Backend: "redis",
		TTL:     30 * time.Second,
		Redis:   RedisConfig{Addr: "localhost:6379", DB: 2, Prefix: "actionx:"},
	}, cfg.Cache)
	assert.Equal(t, TokenConfig{
		URL:          "https://auth.example.com/token",
		ClientID:     "svc",
		ClientSecret: "s3cret",
		Scopes:       []string{"read", "write"},
		Skew:         30 * time.Second,
	}, cfg.Token)
	assert.Equal(t, "debug", cfg.Log.Level)

	_, ok := cfg.Store().(*cache.Redis)
	assert.True(t, ok)
	rc := cfg.RetryPolicy()
	require.NotNil(t, rc)
	assert.Equal(t, 3, rc.MaxAttempts)
	assert.NotNil(t, cfg.TokenProvider(nil, cfg.Logger()))
	assert.Equal(t, logrus.DebugLevel, cfg.Logger().GetLevel())
}

func TestLoadBadYAML(t *testing.T) {
	_, err := Load(writeFile(t, "timeout: [\n"), "")
	assert.ErrorContains(t, err, "actionx/config: loading")
}

func TestValidate(t *testing.T) {
	path := writeFile(t, `
base_url: /relative
timeout: -1s
retry:
  max_attempts: -1
  base_delay: 2s
  max_delay: 1s
cache:
  backend: disk
token:
  url: https://auth.example.com/token
log:
  level: loud
`)
	_, err := Load(path, "")
	require.Error(t, err)
	for _, want := range []string{
		"actionx/config: invalid configuration",
		`base_url "/relative" is not an absolute URL`,
		"timeout may not be negative",
		"retry.max_attempts may not be negative",
		"retry delays must satisfy 0 < base_delay <= max_delay",
		`unknown cache.backend "disk"`,
		"token.client_id is required with token.url",
		`not a valid logrus Level: "loud"`,
	} {
		assert.Contains(t, err.Error(), want)
	}

	redisNoAddr := &Config{Retry: RetryConfig{BaseDelay: 1, MaxDelay: 1}, Cache: CacheConfig{Backend: "redis"}, Log: LogConfig{Level: "info"}}
	assert.ErrorContains(t, redisNoAddr.Validate(), "cache.redis.addr is required")
}

func TestConfigCollaborators(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Nil(t, cfg.RetryPolicy())
	assert.Nil(t, cfg.TokenProvider(nil, nil))
	_, ok := cfg.Store().(*cache.Memory)
	assert.True(t, ok)
	cfg.Cache.Backend = "none"
	assert.Nil(t, cfg.Store())
	assert.Equal(t, logrus.InfoLevel, cfg.Logger().GetLevel())
}
