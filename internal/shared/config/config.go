package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string
	DatabaseURL     string

	OllamaURL         string
	LLMModel          string
	LLMTimeoutSeconds int

	ChunkSize      int
	ChunkOverlap   int
	PromptMaxChars int
	MaxUploadMB    int64
	ExtractFormats []string

	TokenTTLMinutes int
	ResetTokenTTL   time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		Env:             env,
		DatabaseURL:     dbURL,

		OllamaURL:         getEnv("OLLAMA_URL", "http://localhost:11434"),
		LLMModel:          getEnv("LLM_MODEL", "mistral:latest"),
		LLMTimeoutSeconds: getEnvInt("LLM_TIMEOUT_SECONDS", 300),

		ChunkSize:      getEnvInt("CHUNK_SIZE", 12000),
		ChunkOverlap:   getEnvInt("CHUNK_OVERLAP", 500),
		PromptMaxChars: getEnvInt("PROMPT_MAX_CHARS", 12000),
		MaxUploadMB:    int64(getEnvInt("MAX_UPLOAD_MB", 10)),
		ExtractFormats: splitAndTrim(getEnv("EXTRACT_FORMATS", "pdf,docx,doc,dxf")),

		TokenTTLMinutes: getEnvInt("TOKEN_TTL_MINUTES", 30),
		ResetTokenTTL:   getEnvDuration("RESET_TOKEN_TTL", time.Hour),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      getEnv("UI_REDIRECT_URL", ""),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d", key, raw, def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using default %s", key, raw, def)
		return def
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}
