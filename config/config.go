package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port      string `mapstructure:"port"`
	UploadDir string `mapstructure:"upload_dir"`

	// LLM provider. "gemini" talks to the Gemini API, "openai" to any
	// OpenAI-compatible endpoint (ai_endpoint).
	AIProvider string `mapstructure:"ai_provider"`
	AIEndpoint string `mapstructure:"ai_endpoint"`
	Model      string `mapstructure:"model"`

	OCREndpoint string `mapstructure:"ocr_endpoint"`
	OCRModel    string `mapstructure:"ocr_model"`

	// Chunking calls are capped to ChunkRateLimit per rolling window of
	// ChunkRateWindowSeconds, per job.
	ChunkRateLimit         int `mapstructure:"chunk_rate_limit"`
	ChunkRateWindowSeconds int `mapstructure:"chunk_rate_window_seconds"`

	MistralAPIKey string `mapstructure:"MISTRAL_API_KEY"`
	GeminiAPIKey  string `mapstructure:"GEMINI_API_KEY"`
	OpenAIAPIKey  string `mapstructure:"OPENAI_API_KEY"`
	MongoURI      string `mapstructure:"MONGODB_URI"`

	WeaviateStoreConfig WeaviateStoreConfig `mapstructure:"weaviate_store_config"`
}

type WeaviateStoreConfig struct {
	Host         string       `mapstructure:"host"`
	APIKey       string       `mapstructure:"WEAVIATE_APIKEY"` // Changed to match env var
	Text2Vec     string       `mapstructure:"text2vec"`
	ModuleConfig ModuleConfig `mapstructure:"module_config"`
}

type ModuleConfig map[string]interface{}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set up Viper to read from config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	v.SetDefault("port", "8000")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("ai_provider", "gemini")
	v.SetDefault("model", "gemini-2.0-flash")
	v.SetDefault("ocr_endpoint", "https://api.mistral.ai")
	v.SetDefault("ocr_model", "mistral-ocr-latest")
	v.SetDefault("chunk_rate_limit", 15)
	v.SetDefault("chunk_rate_window_seconds", 60)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("MISTRAL_API_KEY")
	v.BindEnv("GEMINI_API_KEY")
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("MONGODB_URI")
	v.BindEnv("weaviate_store_config.WEAVIATE_APIKEY", "WEAVIATE_APIKEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
