package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Valkey     ValkeyConfig
	MinIO      MinIOConfig
	S3         S3Config
	OpenRouter OpenRouterConfig
	Bedrock    BedrockConfig
	Gemini     GeminiConfig
	GitHub     GitHubConfig
	Select     SelectConfig
	Rework     ReworkConfig
	Worker     WorkerConfig
	Scheduler  SchedulerConfig
	MCP        MCPConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type ValkeyConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type S3Config struct {
	Region   string // S3_REGION
	Bucket   string // S3_BUCKET
	Prefix   string // S3_PREFIX (optional default prefix)
	Endpoint string // S3_ENDPOINT (for MinIO/LocalStack compatibility)
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type BedrockConfig struct {
	Region  string
	ModelID string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type GitHubConfig struct {
	Token     string // optional; raises the API rate limit
	CacheSize int    // LRU entries for repository listings
}

// SelectConfig bounds automated file selection.
type SelectConfig struct {
	MaxFiles      int
	MaxFileBytes  int64
	MaxTotalBytes int64
}

// ReworkConfig carries the run defaults; per-run overrides take precedence.
type ReworkConfig struct {
	MaxBatchChars     int
	RetryMaxAttempts  int
	RetryBackoff      time.Duration
	ContinueOnFailure bool
}

type WorkerConfig struct {
	Consumers int
}

// SchedulerConfig drives the janitor that requeues or fails stuck runs.
type SchedulerConfig struct {
	Interval       time.Duration
	QueuedTimeout  time.Duration
	RunningTimeout time.Duration
}

type MCPConfig struct {
	Addr string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT_SECS", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT_SECS", 60)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "reforge"),
			Password: getEnv("DB_PASSWORD", "reforge"),
			Name:     getEnv("DB_NAME", "reforge"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 5)),
		},
		Valkey: ValkeyConfig{
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: getEnv("VALKEY_PASSWORD", ""),
			DB:       getEnvInt("VALKEY_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "reforge"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "reforge123"),
			Bucket:    getEnv("MINIO_BUCKET", "reforge"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		S3: S3Config{
			Region:   getEnv("S3_REGION", ""),
			Bucket:   getEnv("S3_BUCKET", ""),
			Prefix:   getEnv("S3_PREFIX", ""),
			Endpoint: getEnv("S3_ENDPOINT", ""),
		},
		OpenRouter: OpenRouterConfig{
			APIKey:  getEnv("OPENROUTER_API_KEY", ""),
			Model:   getEnv("OPENROUTER_MODEL", ""),
			BaseURL: getEnv("OPENROUTER_BASE_URL", ""),
		},
		Bedrock: BedrockConfig{
			// Empty region leaves the Bedrock backend unselected.
			Region:  getEnv("BEDROCK_REGION", ""),
			ModelID: getEnv("BEDROCK_MODEL_ID", "anthropic.claude-3-5-sonnet-20241022-v2:0"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", ""),
		},
		GitHub: GitHubConfig{
			Token:     getEnv("GITHUB_TOKEN", ""),
			CacheSize: getEnvInt("GITHUB_CACHE_SIZE", 128),
		},
		Select: SelectConfig{
			MaxFiles:      getEnvInt("SELECT_MAX_FILES", 40),
			MaxFileBytes:  int64(getEnvInt("SELECT_MAX_FILE_BYTES", 65536)),
			MaxTotalBytes: int64(getEnvInt("SELECT_MAX_TOTAL_BYTES", 1<<20)),
		},
		Rework: ReworkConfig{
			MaxBatchChars:     getEnvInt("REWORK_MAX_BATCH_CHARS", 20000),
			RetryMaxAttempts:  getEnvInt("REWORK_RETRY_MAX_ATTEMPTS", 2),
			RetryBackoff:      getEnvDuration("REWORK_RETRY_BACKOFF", time.Second),
			ContinueOnFailure: getEnvBool("REWORK_CONTINUE_ON_FAILURE", false),
		},
		Worker: WorkerConfig{
			Consumers: getEnvInt("WORKER_CONSUMERS", 1),
		},
		Scheduler: SchedulerConfig{
			Interval:       getEnvDuration("SCHEDULER_INTERVAL", time.Minute),
			QueuedTimeout:  getEnvDuration("RUN_QUEUED_TIMEOUT", 15*time.Minute),
			RunningTimeout: getEnvDuration("RUN_RUNNING_TIMEOUT", time.Hour),
		},
		MCP: MCPConfig{
			Addr: getEnv("MCP_ADDR", ":8091"),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
