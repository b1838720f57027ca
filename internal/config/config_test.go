package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"appatlas/internal/kb"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ATLAS_LOCALE", "ATLAS_CACHE_SIZE", "ATLAS_SQL_DSN",
		"ATLAS_GITHUB_OWNER", "ATLAS_GITHUB_BRANCH", "ATLAS_GITHUB_TOKEN", "GITHUB_TOKEN",
		"ATLAS_S3_BUCKET", "ATLAS_S3_USE_SSL", "MINIO_ROOT_USER",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "en-US", cfg.Locale)
	assert.Equal(t, kb.DefaultCacheSize, cfg.CacheSize)
	assert.Empty(t, cfg.SQLDSN)
	assert.Equal(t, "main", cfg.GitHub.Branch)
	assert.Equal(t, "data", cfg.GitHub.Prefix)
	assert.Equal(t, "appatlas-artifacts", cfg.S3.Bucket)
	assert.True(t, cfg.S3.UseSSL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ATLAS_LOCALE", "de-DE")
	t.Setenv("ATLAS_CACHE_SIZE", "25")
	t.Setenv("ATLAS_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "fallback-token")
	t.Setenv("ATLAS_S3_USE_SSL", "false")
	t.Setenv("ATLAS_S3_ACCESS_KEY", "")
	t.Setenv("MINIO_ROOT_USER", "minio")

	cfg := Load()
	assert.Equal(t, "de-DE", cfg.Locale)
	assert.Equal(t, 25, cfg.CacheSize)
	assert.Equal(t, "fallback-token", cfg.GitHub.Token)
	assert.False(t, cfg.S3.UseSSL)
	assert.Equal(t, "minio", cfg.S3.AccessKey)
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("ATLAS_CACHE_SIZE", "not-a-number")
	assert.Equal(t, kb.DefaultCacheSize, Load().CacheSize)

	t.Setenv("ATLAS_CACHE_SIZE", "-5")
	assert.Equal(t, kb.DefaultCacheSize, Load().CacheSize)
}
