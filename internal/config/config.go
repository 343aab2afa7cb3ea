package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Redis (optional, enables cross-instance websocket fan-out)
	RedisURL              string
	RedisMaxSubscriptions int

	// Sessions
	SessionSecret string
	SessionTTL    time.Duration

	// LLM
	LLMProvider    string
	LLMModel       string
	LLMTemperature float64
	LLMAPIKey      string
	GroqBaseURL    string
	GeminiEndpoint string
	PromptsPath    string

	// Sandbox
	SandboxBackend  string
	SandboxLanguage string
	SandboxPython   string
	SandboxImage    string
	SandboxTimeout  time.Duration

	// Frontend
	FrontendURL string
}

const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"

	SandboxLocal  = "local"
	SandboxDocker = "docker"
)

var defaultModels = map[string]string{
	ProviderGroq:   "openai/gpt-oss-120b",
	ProviderGemini: "gemini-1.5-flash",
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	provider := strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderGroq))

	cfg := &Config{
		Port:                  getEnvOrDefault("PORT", "8080"),
		Env:                   getEnvOrDefault("ENV", "development"),
		RedisURL:              getEnvOrDefault("REDIS_URL", ""),
		RedisMaxSubscriptions: getEnvAsIntOrDefault("REDIS_MAX_SUBSCRIPTIONS", 64),
		SessionSecret:         getEnvOrDefault("SESSION_SECRET", ""),
		SessionTTL:            getEnvAsDurationOrDefault("SESSION_TTL", 2*time.Hour),
		LLMProvider:           provider,
		LLMModel:              getEnvOrDefault("LLM_MODEL", defaultModels[provider]),
		LLMTemperature:        getEnvAsFloatOrDefault("LLM_TEMPERATURE", 0.3),
		LLMAPIKey:             getEnvOrDefault("LLM_API_KEY", ""),
		GroqBaseURL:           getEnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GeminiEndpoint:        getEnvOrDefault("GEMINI_ENDPOINT", ""),
		PromptsPath:           getEnvOrDefault("PROMPTS_PATH", ""),
		SandboxBackend:        strings.ToLower(getEnvOrDefault("SANDBOX_BACKEND", SandboxLocal)),
		SandboxLanguage:       getEnvOrDefault("SANDBOX_LANGUAGE", "python"),
		SandboxPython:         getEnvOrDefault("SANDBOX_PYTHON", "python3"),
		SandboxImage:          getEnvOrDefault("SANDBOX_IMAGE", "python:3.12-alpine"),
		SandboxTimeout:        getEnvAsDurationOrDefault("SANDBOX_TIMEOUT", 0),
		FrontendURL:           getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	if _, ok := defaultModels[c.LLMProvider]; !ok {
		return fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderGroq, ProviderGemini, c.LLMProvider)
	}
	if c.LLMModel == "" {
		return fmt.Errorf("LLM_MODEL cannot be empty")
	}
	if c.SandboxBackend != SandboxLocal && c.SandboxBackend != SandboxDocker {
		return fmt.Errorf("SANDBOX_BACKEND must be %q or %q, got %q", SandboxLocal, SandboxDocker, c.SandboxBackend)
	}
	if c.SandboxLanguage == "" {
		return fmt.Errorf("SANDBOX_LANGUAGE cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

// MustGetEnv is used by entrypoints for keys that only they require.
func MustGetEnv(key string) string {
	return mustGetEnv(key)
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

// getEnvAsDurationOrDefault accepts Go durations ("90s") or plain seconds ("90").
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs := getEnvAsIntOrDefault(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}
