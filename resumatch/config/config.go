package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	JWTSecret  string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string

	ListenAddr string

	LLM LLMConfig
}

// LLMConfig holds completion-service settings, loaded from config/llm.yaml
// and overridable through environment variables.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // "ollama" or "openai"
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"-"`
	Temperature float64 `yaml:"temperature"`
	EmbedModel  string  `yaml:"embed_model"`
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return Config{
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "resume_analysis"),
		JWTSecret:  getEnv("JWT_SECRET", ""),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    getEnv("MINIO_BUCKET", "resumes"),

		ListenAddr: getEnv("LISTEN_ADDR", ":8000"),

		LLM: loadLLMConfig(getEnv("LLM_CONFIG", "config/llm.yaml")),
	}
}

func loadLLMConfig(path string) LLMConfig {
	// Defaults match a local Ollama setup.
	cfg := LLMConfig{
		Provider:    "ollama",
		Model:       "llama3:8b",
		Temperature: 0.1,
		EmbedModel:  "all-minilm:l6-v2",
	}

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Printf("invalid llm config %s: %v", path, err)
		}
	}

	cfg.Provider = getEnv("LLM_PROVIDER", cfg.Provider)
	cfg.Model = getEnv("LLM_MODEL", cfg.Model)
	cfg.BaseURL = getEnv("LLM_BASE_URL", cfg.BaseURL)
	cfg.APIKey = getEnv("LLM_API_KEY", "")
	cfg.EmbedModel = getEnv("LLM_EMBED_MODEL", cfg.EmbedModel)
	return cfg
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}
