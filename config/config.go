package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	Port int

	// Catalog server connection.
	PlexURL     string
	PlexToken   string
	PlexLibrary string

	// Bookkeeping store (rooms, swipes, matches).
	DatabaseURL string

	// Freshness window for the per-(room,user) swipe cache.
	SwipeCacheTTL time.Duration

	// Sampler retry budgets. The room path is latency sensitive; the
	// suggestion path carries full enrichment and can afford more.
	SamplerMaxAttempts int
	SuggestMaxAttempts int

	// Per-provider request timeout for image/trailer resolution.
	ProviderTimeout time.Duration

	// Always-valid fallback image used when every provider misses.
	PlaceholderImageURL string

	// TTL for cached provider resolutions, in hours.
	ImageCacheTTLHours int
	ImageCacheDir      string

	SessionDuration time.Duration
}

const defaultPlaceholder = "https://avatars.githubusercontent.com/u/72304665?v=4"

func Load() *Config {
	return &Config{
		Port:                envInt("PORT", 8080),
		PlexURL:             env("PLEX_URL", ""),
		PlexToken:           env("PLEX_TOKEN", ""),
		PlexLibrary:         env("PLEX_LIBRARY", "Movies"),
		DatabaseURL:         env("DATABASE_URL", "postgres://reelpick:reelpick@db:5432/reelpick?sslmode=disable"),
		SwipeCacheTTL:       envDuration("SWIPE_CACHE_TTL", 30*time.Second),
		SamplerMaxAttempts:  envInt("SAMPLER_MAX_ATTEMPTS", 3),
		SuggestMaxAttempts:  envInt("SUGGEST_MAX_ATTEMPTS", 5),
		ProviderTimeout:     envDuration("PROVIDER_TIMEOUT", 3*time.Second),
		PlaceholderImageURL: env("PLACEHOLDER_IMAGE_URL", defaultPlaceholder),
		ImageCacheTTLHours:  envInt("IMAGE_CACHE_TTL_HOURS", 24),
		ImageCacheDir:       env("IMAGE_CACHE_DIR", "/data/cache/images"),
		SessionDuration:     envDuration("SESSION_DURATION", 24*time.Hour),
	}
}

// CatalogConfigured reports whether the catalog server connection is usable.
func (c *Config) CatalogConfigured() bool {
	return c.PlexURL != "" && c.PlexToken != ""
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
