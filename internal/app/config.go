package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/collections-backend/internal/platform/envutil"
)

type Config struct {
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`
	Port        string `yaml:"port"`
	LogMode     string `yaml:"log_mode"`

	DatabaseURL string `yaml:"database_url"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	BulkChunkSize     int           `yaml:"bulk_chunk_size"`
	BulkExclusive     bool          `yaml:"bulk_exclusive"`
	TaskRetention     time.Duration `yaml:"task_retention"`
	TaskStaleTTL      time.Duration `yaml:"task_stale_ttl"`
	WorkerConcurrency int           `yaml:"worker_concurrency"`
	WorkerQueueSize   int           `yaml:"worker_queue_size"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`

	LikedCollectionName string   `yaml:"liked_collection_name"`
	CORSOrigins         []string `yaml:"cors_origins"`
	KeepChannelOpen     bool     `yaml:"keep_channel_open"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:         "collections-backend",
		Environment:         "development",
		Port:                "8000",
		LogMode:             "development",
		DatabaseURL:         "sqlite://collections.db",
		BulkChunkSize:       10,
		TaskRetention:       time.Hour,
		TaskStaleTTL:        24 * time.Hour,
		WorkerConcurrency:   4,
		WorkerQueueSize:     64,
		ShutdownTimeout:     30 * time.Second,
		LikedCollectionName: "Liked Companies",
	}
}

// LoadConfig layers defaults, then the YAML file named by CONFIG_FILE, then
// environment variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServiceName = envutil.String("SERVICE_NAME", c.ServiceName)
	c.Environment = envutil.String("APP_ENV", c.Environment)
	c.Port = envutil.String("PORT", c.Port)
	c.LogMode = envutil.String("LOG_MODE", c.LogMode)
	c.DatabaseURL = envutil.String("DATABASE_URL", c.DatabaseURL)
	c.RedisAddr = envutil.String("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = envutil.String("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = envutil.Int("REDIS_DB", c.RedisDB)
	c.BulkChunkSize = envutil.Int("BULK_CHUNK_SIZE", c.BulkChunkSize)
	c.BulkExclusive = envutil.Bool("BULK_EXCLUSIVE", c.BulkExclusive)
	c.TaskRetention = envutil.Duration("TASK_RETENTION", c.TaskRetention)
	c.TaskStaleTTL = envutil.Duration("TASK_STALE_TTL", c.TaskStaleTTL)
	c.WorkerConcurrency = envutil.Int("WORKER_CONCURRENCY", c.WorkerConcurrency)
	c.WorkerQueueSize = envutil.Int("WORKER_QUEUE_SIZE", c.WorkerQueueSize)
	c.ShutdownTimeout = envutil.Duration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.LikedCollectionName = envutil.String("LIKED_COLLECTION_NAME", c.LikedCollectionName)
	c.CORSOrigins = envutil.List("CORS_ORIGINS", c.CORSOrigins)
	c.KeepChannelOpen = envutil.Bool("PROGRESS_KEEP_OPEN", c.KeepChannelOpen)
}

func (c Config) validate() error {
	switch {
	case strings.TrimSpace(c.DatabaseURL) == "":
		return fmt.Errorf("DATABASE_URL required")
	case c.BulkChunkSize < 1:
		return fmt.Errorf("BULK_CHUNK_SIZE must be positive, got %d", c.BulkChunkSize)
	case c.WorkerConcurrency < 1:
		return fmt.Errorf("WORKER_CONCURRENCY must be positive, got %d", c.WorkerConcurrency)
	case c.TaskRetention <= 0:
		return fmt.Errorf("TASK_RETENTION must be positive")
	case strings.TrimSpace(c.LikedCollectionName) == "":
		return fmt.Errorf("LIKED_COLLECTION_NAME required")
	}
	return nil
}

// LogFields summarizes the config for the startup log. DATABASE_URL is keyed
// so the logger redacts it.
func (c Config) LogFields() []interface{} {
	return []interface{}{
		"port", c.Port,
		"database_dsn", c.DatabaseURL,
		"redis_addr", c.RedisAddr,
		"bulk_chunk_size", c.BulkChunkSize,
		"bulk_exclusive", c.BulkExclusive,
		"task_retention", c.TaskRetention.String(),
		"worker_concurrency", c.WorkerConcurrency,
	}
}

