package config

import (
	"os"
	"strconv"
	"time"
)

const defaultSystemPrompt = "You are an intelligent and helpful AI assistant. Provide clear, accurate, and thoughtful responses."

type Config struct {
	HTTPAddr     string
	JWTSecret    string
	SessionTTL   time.Duration
	SystemPrompt string

	// Provider endpoints; empty means each adapter's public default.
	OpenAIBaseURL      string
	GeminiBaseURL      string
	ClaudeBaseURL      string
	HuggingFaceBaseURL string

	// Reply cache; empty RedisAddr disables it.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Transcript archive.
	ArchiveDriver string
	ArchiveDSN    string

	LogDir string
}

func Load() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	sessionTTL := 24 * time.Hour
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			sessionTTL = d
		}
	}

	systemPrompt := os.Getenv("SYSTEM_PROMPT")
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	cacheTTL := 10 * time.Minute
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cacheTTL = d
		}
	}

	archiveDriver := os.Getenv("ARCHIVE_DRIVER")
	if archiveDriver == "" {
		archiveDriver = "sqlite"
	}
	// In-memory by default: the archive lives only as long as the process.
	archiveDSN := os.Getenv("ARCHIVE_DSN")
	if archiveDSN == "" {
		archiveDSN = "file::memory:?cache=shared"
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	return Config{
		HTTPAddr:     addr,
		JWTSecret:    secret,
		SessionTTL:   sessionTTL,
		SystemPrompt: systemPrompt,

		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		GeminiBaseURL:      os.Getenv("GEMINI_BASE_URL"),
		ClaudeBaseURL:      os.Getenv("CLAUDE_BASE_URL"),
		HuggingFaceBaseURL: os.Getenv("HUGGINGFACE_BASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		CacheTTL:      cacheTTL,

		ArchiveDriver: archiveDriver,
		ArchiveDSN:    archiveDSN,

		LogDir: logDir,
	}
}
