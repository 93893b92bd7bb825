package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL settings for the list record store.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	// Schema, when set, becomes the search_path of every connection.
	Schema             string
	ConnectTimeout     time.Duration
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for the document file tree.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StoreConfig selects the backing store implementation.
// Backend is "memory" or "remote" (PostgreSQL records plus MinIO files).
type StoreConfig struct {
	Backend   string
	ChunkSize int64
}

// RepositoryConfig tunes the document repository and the promotion workflow.
type RepositoryConfig struct {
	DocumentLibrary  string
	StandardsLibrary string
	TemplatesLibrary string
	CacheTTL         time.Duration
	ChunkThreshold   int64
	RetryAttempts    int
	RetryBaseDelay   time.Duration
	// SchemaFile optionally points at a YAML file overriding the expected field sets.
	SchemaFile string
}

// ClassificationConfig locates the classification asset.
// Path is resolved relative to SiteURL unless it is absolute.
type ClassificationConfig struct {
	SiteURL string
	Path    string
	Timeout time.Duration
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost        string
	Port           string
	LogLevel       string
	Database       DatabaseConfig
	MinIO          MinIOConfig
	Store          StoreConfig
	Repository     RepositoryConfig
	Classification ClassificationConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			Schema:             getEnv("DB_SCHEMA", ""),
			ConnectTimeout:     getEnvDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Store: StoreConfig{
			Backend:   getEnv("STORE_BACKEND", "memory"),
			ChunkSize: int64(getEnvInt("STORE_CHUNK_SIZE", 10<<20)),
		},
		Repository: RepositoryConfig{
			DocumentLibrary:  getEnv("DOCUMENT_LIBRARY", "ProjectDocuments"),
			StandardsLibrary: getEnv("STANDARDS_LIBRARY", "Standards"),
			TemplatesLibrary: getEnv("TEMPLATES_LIBRARY", "Templates"),
			CacheTTL:         getEnvDuration("CACHE_TTL", 30*time.Second),
			ChunkThreshold:   int64(getEnvInt("UPLOAD_CHUNK_THRESHOLD", 10<<20)),
			RetryAttempts:    getEnvInt("RETRY_ATTEMPTS", 3),
			RetryBaseDelay:   getEnvDuration("RETRY_BASE_DELAY", time.Second),
			SchemaFile:       getEnv("SCHEMA_FILE", ""),
		},
		Classification: ClassificationConfig{
			SiteURL: getEnv("SITE_URL", ""),
			Path:    getEnv("CLASSIFICATION_PATH", "SiteAssets/uniclass.json"),
			Timeout: getEnvDuration("CLASSIFICATION_TIMEOUT", 10*time.Second),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvDuration accepts Go duration strings ("30s") or plain seconds ("30").
func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if i, err := strconv.Atoi(v); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return def
}
