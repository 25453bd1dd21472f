package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	LLMBaseURL         string
	LLMModelName       string
	LLMAPIKey          string
	EmbeddingBaseURL   string
	EmbeddingModelName string
	DBPath             string
	QdrantURL          string
	QdrantCollection   string
	QdrantVectorSize   int
	TavilyAPIKey       string
	WebSearchEnabled   bool
	FetchTimeout       time.Duration
	APIPort            string
	LogLevel           slog.Level
	LogFormat          string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		LLMBaseURL:         getEnv("LLM_BASE_URL", "https://api.openai.com"),
		LLMModelName:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMAPIKey:          getEnv("LLM_API_KEY", ""),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "https://api.openai.com"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "text-embedding-3-small"),
		DBPath:             getEnv("DB_PATH", "./data/floorplan-ai.db"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "floorplans"),
		TavilyAPIKey:       getEnv("TAVILY_API_KEY", ""),
		APIPort:            getEnv("API_PORT", "9000"),
	}

	// Web search only runs when a provider key is configured.
	cfg.WebSearchEnabled = cfg.TavilyAPIKey != ""

	cfg.LogLevel = parseLogLevel(getEnv("LOG_LEVEL", "info"))
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "text"))

	// Parse QDRANT_VECTOR_SIZE
	// This must match the output vector size of the embeddings model
	// (1536 for text-embedding-3-small). If the vector size changes, the
	// Qdrant collection must be recreated.
	vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "1536")
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	// Parse FETCH_TIMEOUT_SECONDS, bounding how long a question waits for
	// retrieval and web search before answering with whatever arrived.
	timeoutStr := getEnv("FETCH_TIMEOUT_SECONDS", "10")
	timeoutSecs, err := strconv.Atoi(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("FETCH_TIMEOUT_SECONDS must be a valid integer: %w", err)
	}
	if timeoutSecs <= 0 {
		return nil, fmt.Errorf("FETCH_TIMEOUT_SECONDS must be greater than 0")
	}
	cfg.FetchTimeout = time.Duration(timeoutSecs) * time.Second

	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}

	// Create ./data directory if it doesn't exist (for the DB file)
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// parseLogLevel maps a level name to a slog.Level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
