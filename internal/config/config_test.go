package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := LoadForTests(map[string]string{"DATABASE_URL": ""})
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/paxta?sslmode=disable",
		"PORT":         "",
	})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr())
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "https://www.cotlook.com/", cfg.CottonIndexURL)
	assert.Equal(t, "https://nbt.tj/en/kurs/kurs.php", cfg.ExchangeRateURL)
	assert.Equal(t, 80.0, cfg.FallbackQuotation)
	assert.Equal(t, 11.3, cfg.FallbackExchangeRate)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":           "postgres://localhost:5432/paxta?sslmode=disable",
		"PORT":                   ":9090",
		"PUBLIC_BASE_URL":        "https://paxta.example.com/",
		"FALLBACK_QUOTATION":     "82.5",
		"FALLBACK_EXCHANGE_RATE": "10.95",
		"CORS_ALLOWED_ORIGINS":   "https://a.example.com, https://b.example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr())
	assert.Equal(t, "https://paxta.example.com", cfg.PublicBaseURL)
	assert.Equal(t, 82.5, cfg.FallbackQuotation)
	assert.Equal(t, 10.95, cfg.FallbackExchangeRate)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
}
