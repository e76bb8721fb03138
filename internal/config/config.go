package config

import (
	"fmt"
	"time"

	"files-manager/internal/MinIO"
	"files-manager/internal/blob"
	"files-manager/pkg/database/postgres"
	"files-manager/pkg/database/redis"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendFS       = "fs"
	BackendMinIO    = "minio"
	BackendS3       = "s3"
)

type Config struct {
	HTTPPort   string `env:"HTTP_PORT" env-default:"5000"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`
	FolderPath string `env:"FOLDER_PATH" env-default:"/tmp/files_manager"`

	MetadataBackend string `env:"METADATA_BACKEND" env-default:"postgres"`
	BlobBackend     string `env:"BLOB_BACKEND" env-default:"fs"`
	QueueBackend    string `env:"QUEUE_BACKEND" env-default:"redis"`
	QueueName       string `env:"QUEUE_NAME" env-default:"fileQueue"`

	EmbeddedWorker    bool          `env:"EMBEDDED_WORKER" env-default:"false"`
	WorkerConcurrency int           `env:"WORKER_CONCURRENCY" env-default:"2"`
	WorkerRetryDelay  time.Duration `env:"WORKER_RETRY_DELAY" env-default:"5s"`
	GRPCHealthPort    string        `env:"GRPC_HEALTH_PORT" env-default:"50051"`

	RateLimitRPS   float64  `env:"RATE_LIMIT_RPS" env-default:"20"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST" env-default:"40"`
	CORSOrigins    []string `env:"CORS_ORIGINS" env-default:"*"`

	Postgres postgres.Config
	Redis    redis.RedisConfig
	MinIO    MinIO.Config
	S3       blob.S3Config
}

// New reads the configuration from the process environment. When path is set,
// the .env file there is loaded into the environment first.
func New(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read config from env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.MetadataBackend {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("unknown METADATA_BACKEND %q", c.MetadataBackend)
	}
	switch c.BlobBackend {
	case BackendFS, BackendMinIO, BackendS3:
	default:
		return fmt.Errorf("unknown BLOB_BACKEND %q", c.BlobBackend)
	}
	switch c.QueueBackend {
	case BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown QUEUE_BACKEND %q", c.QueueBackend)
	}
	return nil
}

// RunsWorker reports whether the API process must also drain the queue. An
// in-memory queue is invisible to other processes.
func (c *Config) RunsWorker() bool {
	return c.EmbeddedWorker || c.QueueBackend == BackendMemory
}
