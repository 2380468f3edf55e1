package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("API_URL", "")

	cfg := Load()

	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.Emulator.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_URL", "https://project.example.co")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "3")
	t.Setenv("TOKEN_TTL_HOURS", "1")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()

	assert.Equal(t, "https://project.example.co", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Hour, cfg.Emulator.TokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Emulator.CORSOrigins)
}

func TestGetEnvInt_RejectsGarbage(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "soon")
	assert.Equal(t, 10, getEnvInt("REQUEST_TIMEOUT_SECONDS", 10))

	t.Setenv("REQUEST_TIMEOUT_SECONDS", "-4")
	assert.Equal(t, 10, getEnvInt("REQUEST_TIMEOUT_SECONDS", 10))
}
