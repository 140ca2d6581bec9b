package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	STTWhisper  = "whisper"
	STTDeepgram = "deepgram"
)

type Config struct {
	Port string

	// Whisper
	OpenAIKey     string
	OpenAIBaseURL string

	// OpenRouter (чат)
	OpenRouterKey     string
	OpenRouterBaseURL string
	OpenRouterModel   string
	OpenRouterReferer string
	OpenRouterTitle   string

	// ElevenLabs
	ElevenLabsKey        string
	ElevenLabsBaseURL    string
	ElevenLabsVoiceID    string
	ElevenLabsModelID    string
	ElevenLabsStability  float64
	ElevenLabsSimilarity float64

	STTProvider string
	DeepgramKey string
	DeepgramURL string

	UpstreamTimeout time.Duration
	UploadDir       string

	AlertBotToken string
	AlertChatID   int64
}

// Load читает .env (если есть) и окружение процесса.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "5000"),

		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		OpenRouterKey:     os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "mistralai/mistral-7b-instruct"),
		OpenRouterReferer: getEnv("OPENROUTER_REFERER", "http://localhost:3000"),
		OpenRouterTitle:   getEnv("OPENROUTER_TITLE", "SpeakGenie"),

		ElevenLabsKey:        os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsBaseURL:    getEnv("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io/v1"),
		ElevenLabsVoiceID:    getEnv("ELEVENLABS_VOICE_ID", "21m00Tcm4TlvDq8ikWAM"), // Rachel
		ElevenLabsModelID:    getEnv("ELEVENLABS_MODEL_ID", "eleven_monolingual_v1"),
		ElevenLabsStability:  getEnvFloat("ELEVENLABS_STABILITY", 0.5),
		ElevenLabsSimilarity: getEnvFloat("ELEVENLABS_SIMILARITY", 0.7),

		STTProvider: getEnv("STT_PROVIDER", STTWhisper),
		DeepgramKey: os.Getenv("DEEPGRAM_API_KEY"),
		DeepgramURL: getEnv("DEEPGRAM_URL", "https://api.deepgram.com/v1/listen?model=nova-2&smart_format=true&language=en"),

		UpstreamTimeout: time.Duration(getEnvInt("UPSTREAM_TIMEOUT_MS", 60000)) * time.Millisecond,
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),

		AlertBotToken: os.Getenv("ALERT_BOT_TOKEN"),
		AlertChatID:   int64(getEnvInt("ALERT_CHAT_ID", 0)),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.STTProvider {
	case STTWhisper:
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY not set")
		}
	case STTDeepgram:
		if c.DeepgramKey == "" {
			return fmt.Errorf("DEEPGRAM_API_KEY not set")
		}
	default:
		return fmt.Errorf("unknown STT_PROVIDER %q", c.STTProvider)
	}
	if c.OpenRouterKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY not set")
	}
	if c.ElevenLabsKey == "" {
		return fmt.Errorf("ELEVENLABS_API_KEY not set")
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT_MS must be positive")
	}
	return nil
}

// AlertsEnabled — алерты в телегу включаются только при обоих параметрах.
func (c *Config) AlertsEnabled() bool {
	return c.AlertBotToken != "" && c.AlertChatID != 0
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
