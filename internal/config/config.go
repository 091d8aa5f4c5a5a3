package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Vector    VectorConfig
	Ai        AIConfig
	Retrieval RetrievalConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type VectorConfig struct {
	Backend    string // "pgvector" or "qdrant"
	QdrantHost string
	QdrantPort int
	Dimension  int
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "jina"
	OllamaBaseURL     string
	OllamaModel       string
	JinaAPIKey        string
	RerankerEnabled   bool
	RerankerModel     string
	IngestTopic       string
}

type RetrievalConfig struct {
	DefaultNResults     int
	ResultCacheTTLSecs  int
	EmbeddingCacheSize  int
	PriorityBoostFactor float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Vector: VectorConfig{
			Backend:    getEnv("VECTOR_BACKEND", "pgvector"),
			QdrantHost: getEnv("QDRANT_HOST", "localhost"),
			QdrantPort: getEnvAsInt("QDRANT_PORT", 6334),
			Dimension:  getEnvAsInt("VECTOR_DIMENSION", 768),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			JinaAPIKey:        getEnv("JINA_API_KEY", ""),
			RerankerEnabled:   getEnvAsBool("RERANKER_ENABLED", false),
			RerankerModel:     getEnv("RERANKER_MODEL", "jina-reranker-v2-base-multilingual"),
			IngestTopic:       getEnv("EMBED_CONTENT_TOPIC_NAME", "EMBED_CONTENT_UNIT"),
		},
		Retrieval: RetrievalConfig{
			DefaultNResults:     getEnvAsInt("RETRIEVAL_DEFAULT_N_RESULTS", 4),
			ResultCacheTTLSecs:  getEnvAsInt("RESULT_CACHE_TTL_SECONDS", 3600),
			EmbeddingCacheSize:  getEnvAsInt("EMBEDDING_CACHE_SIZE", 1000),
			PriorityBoostFactor: getEnvAsFloat("PRIORITY_BOOST_FACTOR", 0.1),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
