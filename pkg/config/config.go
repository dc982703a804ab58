package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/cloud-wave-best-zizon/store-service/pkg/mtls"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port             string        `envconfig:"PORT" default:"8000"`
	DatabaseURL      string        `envconfig:"DATABASE_URL" required:"true"`
	ProductTableName string        `envconfig:"PRODUCT_TABLE_NAME" default:"products"`
	ProjectName      string        `envconfig:"PROJECT_NAME" default:"Store API"`
	RootPath         string        `envconfig:"ROOT_PATH" default:"/"`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`
	LocalMode        bool          `envconfig:"LOCAL_MODE" default:"false"` // dev logger, create missing tables
	RedisAddr        string        `envconfig:"REDIS_ADDR"`
	CacheTTL         time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	KafkaBrokers     []string      `envconfig:"KAFKA_BROKERS"`
	KafkaTopic       string        `envconfig:"KAFKA_TOPIC" default:"product-events"`
	ShutdownTimeout  time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	TLS mtls.Config `ignored:"true"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("required key DATABASE_URL is empty")
	}

	if err := envconfig.Process("", &cfg.TLS); err != nil {
		return nil, err
	}

	return &cfg, nil
}
