package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medassist/api/internal/assist"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "shared")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 120*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "gemini-2.5-flash", cfg.Models().Report)
	assert.Equal(t, "gemini-2.0-flash", cfg.Models().SymptomsFallback)
	assert.Equal(t, []string{"*"}, cfg.Origins())
}

func TestLoad_PerOperationKeys(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "shared")
	t.Setenv("GEMINI_SPEECH_KEY", "speech")

	cfg, err := Load()
	require.NoError(t, err)
	keys := cfg.Keys()
	assert.Equal(t, "speech", keys.For(assist.OpSpeech))
	assert.Equal(t, "shared", keys.For(assist.OpChat))
}

func TestLoad_RequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMINI_REPORT_KEY", "only-report")

	_, err := Load()
	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}

func TestOrigins(t *testing.T) {
	c := Config{AllowedOrigins: "https://a.example, ,https://b.example"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.Origins())
}
