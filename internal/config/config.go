package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/BerylCAtieno/financial-analyzer/internal/llm"
)

var (
	ErrMissingAPIKey        = errors.New("OPENAI_API_KEY is required")
	ErrInvalidMaxFileSize   = errors.New("MAX_FILE_SIZE_MB must be positive")
	ErrUnknownStorageType   = errors.New("STORAGE_TYPE must be memory or s3")
	ErrUnknownHistoryDriver = errors.New("HISTORY_DRIVER must be empty, sqlite or pgx")
)

const (
	StorageMemory = "memory"
	StorageS3     = "s3"

	HistorySQLite   = "sqlite"
	HistoryPostgres = "pgx"
)

type Config struct {
	Port     string
	LogLevel string

	// OpenAI-compatible chat completion endpoint
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	OpenAITimeout time.Duration

	// Upload limits
	MaxFileSize int64

	// Web UI
	SessionSecret      string
	RenderHTML         bool
	CORSAllowedOrigins []string

	// Upload staging
	StorageType string
	UploadTTL   time.Duration

	// S3
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool

	// Analysis history, disabled when HistoryDriver is empty
	HistoryDriver string
	HistoryDSN    string

	MetricsEnabled bool
}

// secrets mirrors a hosting platform secrets file:
//
//	openai: sk-...
type secrets struct {
	OpenAI string `yaml:"openai"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; SECRETS_FILE may supply the API key.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	maxMB := getEnvAsInt("MAX_FILE_SIZE_MB", 20)

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", llm.DefaultBaseURL),
		OpenAIModel:        getEnv("OPENAI_MODEL", llm.DefaultModel),
		OpenAITimeout:      getEnvAsDuration("OPENAI_TIMEOUT", 0),
		MaxFileSize:        int64(maxMB) * 1024 * 1024,
		SessionSecret:      getEnv("SESSION_SECRET", ""),
		RenderHTML:         getEnvAsBool("RENDER_HTML", true),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		StorageType:        strings.ToLower(getEnv("STORAGE_TYPE", StorageMemory)),
		UploadTTL:          getEnvAsDuration("UPLOAD_TTL", 30*time.Minute),
		S3Endpoint:         getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKeyID:      getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
		S3SecretAccessKey:  getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
		S3BucketName:       getEnv("S3_BUCKET_NAME", "financial-uploads"),
		S3UseSSL:           getEnvAsBool("S3_USE_SSL", false),
		HistoryDriver:      strings.ToLower(getEnv("HISTORY_DRIVER", "")),
		HistoryDSN:         getEnv("HISTORY_DSN", "data/history.db"),
		MetricsEnabled:     getEnvAsBool("METRICS_ENABLED", true),
	}

	if cfg.OpenAIAPIKey == "" {
		if path := os.Getenv("SECRETS_FILE"); path != "" {
			key, err := loadSecrets(path)
			if err != nil {
				return nil, err
			}
			cfg.OpenAIAPIKey = key
		}
	}

	return cfg, nil
}

// Validate checks settings every entry point needs.
func (c *Config) Validate() error {
	if c.MaxFileSize <= 0 {
		return ErrInvalidMaxFileSize
	}
	switch c.StorageType {
	case StorageMemory, StorageS3:
	default:
		return ErrUnknownStorageType
	}
	switch c.HistoryDriver {
	case "", HistorySQLite, HistoryPostgres:
	default:
		return ErrUnknownHistoryDriver
	}
	return nil
}

// RequireCredential is Validate plus the API key check, for entry points that
// talk to the model.
func (c *Config) RequireCredential() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.OpenAIAPIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func (c *Config) LLM() llm.Config {
	return llm.Config{
		APIKey:  c.OpenAIAPIKey,
		BaseURL: c.OpenAIBaseURL,
		Model:   c.OpenAIModel,
		Timeout: c.OpenAITimeout,
	}
}

func loadSecrets(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secrets file: %w", err)
	}

	var s secrets
	if err := yaml.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("failed to parse secrets file: %w", err)
	}

	return strings.TrimSpace(s.OpenAI), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
