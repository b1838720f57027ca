// Package config loads environment-driven settings shared by the CLI and
// the MCP server. Flags stay with the commands; everything that is
// deployment-shaped (credentials, endpoints, cache sizing) lives here.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"appatlas/internal/artifact"
	"appatlas/internal/kb"
)

type Config struct {
	// Locale picks the translation variant during resolution.
	Locale string
	// CacheSize bounds the serving layer's evictable artifact cache.
	CacheSize int
	// SQLDSN, when set, selects the SQL artifact backend. Postgres URLs
	// and keyword DSNs use pgx; anything else is a SQLite path.
	SQLDSN string
	GitHub kb.GitHubConfig
	S3     artifact.S3Config
}

// Load reads .env when present, then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Locale:    firstNonEmpty(env("ATLAS_LOCALE"), "en-US"),
		CacheSize: envInt("ATLAS_CACHE_SIZE", kb.DefaultCacheSize),
		SQLDSN:    env("ATLAS_SQL_DSN"),
		GitHub: kb.GitHubConfig{
			Owner:  env("ATLAS_GITHUB_OWNER"),
			Repo:   env("ATLAS_GITHUB_REPO"),
			Branch: firstNonEmpty(env("ATLAS_GITHUB_BRANCH"), "main"),
			Prefix: firstNonEmpty(env("ATLAS_GITHUB_PREFIX"), "data"),
			Token:  firstNonEmpty(env("ATLAS_GITHUB_TOKEN"), env("GITHUB_TOKEN")),
		},
		S3: artifact.S3Config{
			Endpoint:  env("ATLAS_S3_ENDPOINT"),
			Region:    firstNonEmpty(env("ATLAS_S3_REGION"), "us-east-1"),
			AccessKey: firstNonEmpty(env("ATLAS_S3_ACCESS_KEY"), env("MINIO_ROOT_USER")),
			SecretKey: firstNonEmpty(env("ATLAS_S3_SECRET_KEY"), env("MINIO_ROOT_PASSWORD")),
			Bucket:    firstNonEmpty(env("ATLAS_S3_BUCKET"), "appatlas-artifacts"),
			UseSSL:    envBool("ATLAS_S3_USE_SSL", true),
		},
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envInt(key string, fallback int) int {
	raw := env(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	raw := env(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
