package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"

	"medassist/api/internal/assist"
	"medassist/api/internal/assist/gemini"
)

// DefaultRequestTimeout matches the REQUEST_TIMEOUT default.
const DefaultRequestTimeout = 120 * time.Second

type Config struct {
	Port           string        `env:"PORT,default=8080"`
	LogLevel       string        `env:"LOG_LEVEL,default=info"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT,default=120s"`
	MaxBodyBytes   int64         `env:"MAX_BODY_BYTES,default=15728640"`
	AllowedOrigins string        `env:"ALLOWED_ORIGINS,default=*"`

	DatabaseURL      string `env:"DATABASE_URL"`
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`

	// One shared key; each operation may override it.
	GeminiAPIKey      string `env:"GEMINI_API_KEY"`
	GeminiReportKey   string `env:"GEMINI_REPORT_KEY"`
	GeminiChatKey     string `env:"GEMINI_CHAT_KEY"`
	GeminiSymptomsKey string `env:"GEMINI_SYMPTOMS_KEY"`
	GeminiSpeechKey   string `env:"GEMINI_SPEECH_KEY"`
	GeminiMapsKey     string `env:"GEMINI_MAPS_KEY"`

	GeminiModel         string `env:"GEMINI_MODEL,default=gemini-2.5-flash"`
	GeminiFallbackModel string `env:"GEMINI_FALLBACK_MODEL,default=gemini-2.0-flash"`
	GeminiMapsModel     string `env:"GEMINI_MAPS_MODEL,default=gemini-2.5-flash"`
	GeminiTTSModel      string `env:"GEMINI_TTS_MODEL,default=gemini-2.5-flash-preview-tts"`
	GeminiTTSVoice      string `env:"GEMINI_TTS_VOICE,default=Kore"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	keys := c.Keys()
	for _, op := range []assist.Operation{assist.OpReport, assist.OpChat, assist.OpSymptoms, assist.OpSpeech, assist.OpHospitals} {
		if keys.For(op) == "" {
			return fmt.Errorf("config: no Gemini API key for %s: set GEMINI_API_KEY", op)
		}
	}
	if c.RequestTimeout <= 0 {
		return errors.New("config: REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// Keys resolves the per-operation API keys.
func (c *Config) Keys() gemini.Keys {
	return gemini.Keys{
		Shared:   c.GeminiAPIKey,
		Report:   c.GeminiReportKey,
		Chat:     c.GeminiChatKey,
		Symptoms: c.GeminiSymptomsKey,
		Speech:   c.GeminiSpeechKey,
		Maps:     c.GeminiMapsKey,
	}
}

func (c *Config) Models() assist.Models {
	return assist.Models{
		Report:           c.GeminiModel,
		Symptoms:         c.GeminiModel,
		SymptomsFallback: c.GeminiFallbackModel,
		Chat:             c.GeminiModel,
		Tips:             c.GeminiModel,
		Maps:             c.GeminiMapsModel,
		Speech:           c.GeminiTTSModel,
		Voice:            c.GeminiTTSVoice,
	}
}

func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
