package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры клиента.
type Config struct {
	BackendURL     string        `env:"VITE_BACKEND_URL"`
	GoogleClientID string        `env:"VITE_GOOGLE_CLIENT_ID"`
	GoogleSecret   string        `env:"GOOGLE_CLIENT_SECRET"`
	OAuthPort      string        `env:"OAUTH_CALLBACK_PORT"`
	SessionDSN     string        `env:"SESSION_DSN"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	UploadTimeout  time.Duration `env:"UPLOAD_TIMEOUT"`

	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`

	FaceMaxSize    uint          `env:"FACE_MAX_SIZE"`
	AlbumExitDelay time.Duration `env:"ALBUM_EXIT_DELAY"`
	SpeechCommand  string        `env:"SPEECH_COMMAND"`

	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"curatai_upload_jobs"`
	}
	MetricsPort string `env:"METRICS_PORT"`

	// Настройки для экспорта альбомов в MinIO / S3
	MinioEndpoint        string  `env:"MINIO_ENDPOINT"`
	MinioAccessKeyID     string  `env:"MINIO_ACCESS_KEY_ID"`
	MinioSecretAccessKey string  `env:"MINIO_SECRET_ACCESS_KEY"`
	MinioUseSSL          bool    `env:"MINIO_USE_SSL"`
	MinioBucketName      string  `env:"MINIO_BUCKET_NAME"`
	MinioRegion          string  `env:"MINIO_REGION"`
	ExportRate           float64 `env:"EXPORT_RATE"`
}

// LoadConfig загружает конфигурацию из переменных окружения.
// Если рядом лежит .env файл, сначала подгружает его.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults вручную проставляет значения по умолчанию для пустых полей.
func (c *Config) applyDefaults() {
	if c.BackendURL == "" {
		c.BackendURL = "http://localhost:8000"
	}
	if c.OAuthPort == "" {
		c.OAuthPort = "8765"
	}
	if c.SessionDSN == "" {
		c.SessionDSN = "sqlite3://" + defaultSessionPath()
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.UploadTimeout <= 0 {
		c.UploadTimeout = 30 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.FaceMaxSize == 0 {
		c.FaceMaxSize = 512
	}
	if c.AlbumExitDelay <= 0 {
		c.AlbumExitDelay = 100 * time.Millisecond
	}
	if c.MetricsPort == "" {
		c.MetricsPort = "9090"
	}
	if c.ExportRate <= 0 {
		c.ExportRate = 4
	}
}

// MinioEnabled сообщает, заданы ли все параметры для экспорта в бакет.
func (c *Config) MinioEnabled() bool {
	return c.MinioEndpoint != "" && c.MinioAccessKeyID != "" && c.MinioSecretAccessKey != "" &&
		c.MinioBucketName != "" && c.MinioRegion != ""
}

// GoogleEnabled сообщает, настроен ли вход через Google.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleSecret != ""
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "curatai", "session.db")
	}
	return filepath.Join(home, ".curatai", "session.db")
}
