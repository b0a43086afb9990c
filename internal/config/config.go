package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Corpus sources.
const (
	CorpusSourceSQLite = "sqlite"
	CorpusSourceQdrant = "qdrant"
)

// LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderLangchain = "langchaingo"
)

// ConfigurationError reports a missing or malformed setting.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Key, e.Reason)
}

// Config holds all configuration for the application.
type Config struct {
	LLMProvider  string
	LLMBaseURL   string
	LLMModelName string
	LLMAPIKey    string

	EmbeddingBaseURL    string
	EmbeddingModelName  string
	EmbeddingAPIKey     string
	EmbeddingVectorSize int // 0 disables the size check
	EmbeddingCacheSize  int

	RerankBaseURL   string
	RerankModelName string
	RerankAPIKey    string
	RerankBatchSize int

	DBPath           string
	CorpusSource     string
	QdrantURL        string
	QdrantCollection string
	MarkdownDir      string

	APIPort   string
	LogLevel  slog.Level
	LogFormat string

	TopKRetrieve      int
	TopKRerank        int
	TopKSummarize     int
	RRFK              int
	RRFWeightLexical  float64
	RRFWeightSemantic float64
	MaxResumeChars    int
	MaxContextChars   int

	IngestBatchSize int
	IngestWorkers   int
	PreloadModels   bool
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or one of its parents, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

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
				break
			}
			dir = parent
		}
	}

	llmBaseURL := getEnv("LLM_BASE_URL", "https://api.openai.com")
	llmAPIKey := getEnv("LLM_API_KEY", "")

	cfg := &Config{
		LLMProvider:  strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		LLMBaseURL:   llmBaseURL,
		LLMModelName: getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMAPIKey:    llmAPIKey,

		// Embeddings and reranking default to the LLM endpoint and key.
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", llmBaseURL),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "text-embedding-3-small"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", llmAPIKey),
		RerankBaseURL:      getEnv("RERANK_BASE_URL", "http://localhost:8082"),
		RerankModelName:    getEnv("RERANK_MODEL", "cross-encoder/ms-marco-MiniLM-L-6-v2"),
		RerankAPIKey:       getEnv("RERANK_API_KEY", llmAPIKey),

		DBPath:           getEnv("DB_PATH", "./data/resume-rag.db"),
		CorpusSource:     strings.ToLower(getEnv("CORPUS_SOURCE", CorpusSourceSQLite)),
		QdrantURL:        getEnv("QDRANT_URL", ""),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "resumes"),
		MarkdownDir:      getEnv("MARKDOWN_DIR", "./data/resumes"),

		APIPort:   getEnv("API_PORT", "9000"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if cfg.LLMAPIKey == "" {
		return nil, &ConfigurationError{Key: "LLM_API_KEY", Reason: "is required"}
	}
	if cfg.LLMProvider != ProviderOpenAI && cfg.LLMProvider != ProviderLangchain {
		return nil, &ConfigurationError{Key: "LLM_PROVIDER", Reason: fmt.Sprintf("must be %q or %q", ProviderOpenAI, ProviderLangchain)}
	}
	if cfg.CorpusSource != CorpusSourceSQLite && cfg.CorpusSource != CorpusSourceQdrant {
		return nil, &ConfigurationError{Key: "CORPUS_SOURCE", Reason: fmt.Sprintf("must be %q or %q", CorpusSourceSQLite, CorpusSourceQdrant)}
	}
	if cfg.CorpusSource == CorpusSourceQdrant && cfg.QdrantURL == "" {
		return nil, &ConfigurationError{Key: "QDRANT_URL", Reason: "is required when CORPUS_SOURCE=qdrant"}
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, &ConfigurationError{Key: "LOG_FORMAT", Reason: `must be "text" or "json"`}
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, &ConfigurationError{Key: "LOG_LEVEL", Reason: err.Error()}
	}

	ints := []struct {
		key  string
		def  int
		min  int
		dest *int
	}{
		{"EMBEDDING_VECTOR_SIZE", 0, 0, &cfg.EmbeddingVectorSize},
		{"EMBEDDING_CACHE_SIZE", 1000, 1, &cfg.EmbeddingCacheSize},
		{"RERANK_BATCH_SIZE", 32, 1, &cfg.RerankBatchSize},
		{"TOP_K_RETRIEVE", 200, 1, &cfg.TopKRetrieve},
		{"TOP_K_RERANK", 180, 1, &cfg.TopKRerank},
		{"TOP_K_SUMMARIZE", 5, 1, &cfg.TopKSummarize},
		{"RRF_K", 60, 1, &cfg.RRFK},
		{"MAX_RESUME_CHARS", 6000, 1, &cfg.MaxResumeChars},
		{"MAX_CONTEXT_CHARS", 2000, 1, &cfg.MaxContextChars},
		{"INGEST_BATCH_SIZE", 100, 1, &cfg.IngestBatchSize},
		{"INGEST_WORKERS", 4, 1, &cfg.IngestWorkers},
	}
	for _, item := range ints {
		v, err := getEnvInt(item.key, item.def)
		if err != nil {
			return nil, err
		}
		if v < item.min {
			return nil, &ConfigurationError{Key: item.key, Reason: fmt.Sprintf("must be at least %d", item.min)}
		}
		*item.dest = v
	}

	if cfg.RRFWeightLexical, err = getEnvFloat("RRF_WEIGHT_LEXICAL", 2.0); err != nil {
		return nil, err
	}
	if cfg.RRFWeightSemantic, err = getEnvFloat("RRF_WEIGHT_SEMANTIC", 1.0); err != nil {
		return nil, err
	}
	if cfg.PreloadModels, err = getEnvBool("PRELOAD_MODELS", false); err != nil {
		return nil, err
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// NewLogger builds the process logger from the configured level and format.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &ConfigurationError{Key: key, Reason: "must be a valid integer"}
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &ConfigurationError{Key: key, Reason: "must be a valid number"}
	}
	return v, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, &ConfigurationError{Key: key, Reason: "must be true or false"}
	}
	return v, nil
}
