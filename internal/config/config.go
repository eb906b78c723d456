package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Survey    SurveyConfig
	Retrieval RetrievalConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	SessionStore       string // "memory" or "redis"
	PersistenceTopic   string
	IndexTopic         string
	DiagnosticsEnabled bool
	DiagnosticsLogPath string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	Anthropic    string
	OpenAI       string
	Jina         string
	GoogleGemini string
	HuggingFace  string
	Pinecone     string
	Qdrant       string
}

type AIConfig struct {
	LLMProvider       string // "anthropic", "ollama" or "huggingface"
	LLMModel          string
	LLMBaseURL        string
	EmbeddingProvider string // "openai", "jina", "ollama" or "gemini"
	EmbeddingModel    string
	EmbeddingBaseURL  string
	OllamaBaseURL     string
	OllamaModel       string
}

type SurveyConfig struct {
	ExpansionTimeout time.Duration
	SessionTTL       time.Duration
	CatalogPath      string // optional YAML override of the built-in catalog
}

type RetrievalConfig struct {
	IndexKind  string // "pgvector", "qdrant" or "pinecone"
	IndexURL   string
	Collection string
	TopK       int
	MaxTopK    int
}

const (
	DefaultTopK = 10
	MaxTopK     = 50
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	cfg := &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3001"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", ""),
			SessionStore:       strings.ToLower(getEnv("SESSION_STORE", "memory")),
			PersistenceTopic:   getEnv("PERSISTENCE_TOPIC", "SURVEY_COMPLETED"),
			IndexTopic:         getEnv("BOOK_INDEX_TOPIC", "BOOK_INDEX"),
			DiagnosticsEnabled: getEnvAsBool("DIAGNOSTICS_ENABLED", false),
			DiagnosticsLogPath: getEnv("DIAGNOSTICS_LOG_PATH", "diagnostics.log"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			Anthropic:    getEnv("ANTHROPIC_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			Pinecone:     getEnv("PINECONE_API_KEY", ""),
			Qdrant:       getEnv("QDRANT_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "anthropic"),
			LLMModel:          getEnv("LLM_MODEL", "claude-3-5-haiku-20241022"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		},
		Survey: SurveyConfig{
			ExpansionTimeout: getEnvAsDuration("SURVEY_EXPANSION_TIMEOUT", 15*time.Second),
			SessionTTL:       getEnvAsDuration("SURVEY_SESSION_TTL", time.Hour),
			CatalogPath:      getEnv("SURVEY_CATALOG_PATH", ""),
		},
		Retrieval: RetrievalConfig{
			IndexKind:  strings.ToLower(getEnv("VECTOR_INDEX", "pgvector")),
			IndexURL:   getEnv("VECTOR_INDEX_URL", ""),
			Collection: getEnv("VECTOR_INDEX_COLLECTION", "books"),
			TopK:       getEnvAsInt("RETRIEVAL_TOP_K", DefaultTopK),
			MaxTopK:    MaxTopK,
		},
	}

	cfg.Retrieval.TopK = ClampTopK(cfg.Retrieval.TopK, cfg.Retrieval.MaxTopK)
	return cfg
}

// ClampTopK keeps a requested result count inside [1, max]; non-positive means default
func ClampTopK(topK, max int) int {
	if max <= 0 {
		max = MaxTopK
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > max {
		return max
	}
	return topK
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return fallback
}
