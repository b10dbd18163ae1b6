package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Scraper.Concurrency)
	assert.Equal(t, 3*time.Second, cfg.Scraper.AttemptDelayMin)
	assert.Equal(t, 7*time.Second, cfg.Scraper.AttemptDelayMax)
	assert.Equal(t, "file", cfg.Catalog.Source)
	assert.True(t, cfg.Browser.Headless)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCRAPER_CONCURRENCY", "4")
	t.Setenv("SCRAPER_ATTEMPT_DELAY_MIN", "1s")
	t.Setenv("SCRAPER_ATTEMPT_DELAY_MAX", "2s")
	t.Setenv("BROWSER_HEADLESS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Scraper.Concurrency)
	assert.Equal(t, time.Second, cfg.Scraper.AttemptDelayMin)
	assert.False(t, cfg.Browser.Headless)
}

func TestValidateRejectsInvertedDelayWindow(t *testing.T) {
	t.Setenv("SCRAPER_ATTEMPT_DELAY_MIN", "10s")
	t.Setenv("SCRAPER_ATTEMPT_DELAY_MAX", "2s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsProxyWithoutCredentials(t *testing.T) {
	t.Setenv("PROXY_SERVER", "http://gateway.example:7777")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownCatalogSource(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "csv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestDatabaseConnString(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "pricewatch", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/pricewatch?sslmode=disable", d.ConnString())
}
