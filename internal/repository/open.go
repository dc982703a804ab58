package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	pkgconfig "github.com/cloud-wave-best-zizon/store-service/pkg/config"
	"go.uber.org/zap"
)

// Open picks the backend from cfg.DatabaseURL:
//
//	mongodb://host:27017/store
//	mongodb+srv://cluster.example.net/store
//	dynamodb://[key:secret@]region[?endpoint=http://localhost:8000]
//	memory://
//
// The returned close func releases the connection.
func Open(ctx context.Context, cfg *pkgconfig.Config, logger *zap.Logger) (ProductRepository, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	scheme, _, ok := strings.Cut(cfg.DatabaseURL, "://")
	if !ok {
		return nil, nil, fmt.Errorf("DATABASE_URL has no scheme")
	}

	switch scheme {
	case "mongodb", "mongodb+srv":
		client, database, err := NewMongoClient(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}

		repo := NewMongoRepository(client.Database(database), cfg.ProductTableName, logger)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}

		logger.Info("Using MongoDB product store",
			zap.String("database", database),
			zap.String("collection", cfg.ProductTableName))
		return repo, client.Disconnect, nil

	case "dynamodb":
		opts, err := parseDynamoDBURL(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}

		client, err := NewDynamoDBClient(ctx, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
		}

		repo := NewDynamoRepository(client, cfg.ProductTableName, logger)
		if cfg.LocalMode {
			if err := repo.EnsureTable(ctx); err != nil {
				return nil, nil, err
			}
		}

		logger.Info("Using DynamoDB product store",
			zap.String("region", opts.Region),
			zap.String("table", cfg.ProductTableName))
		return repo, noop, nil

	case "memory":
		logger.Warn("Using in-memory product store; data is lost on exit")
		return NewMemoryRepository(), noop, nil

	default:
		return nil, nil, fmt.Errorf("unsupported DATABASE_URL scheme %q", scheme)
	}
}

func parseDynamoDBURL(raw string) (DynamoDBOptions, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return DynamoDBOptions{}, fmt.Errorf("invalid dynamodb url: %w", err)
	}
	if u.Host == "" {
		return DynamoDBOptions{}, fmt.Errorf("dynamodb url must name a region, e.g. dynamodb://ap-northeast-2")
	}

	opts := DynamoDBOptions{
		Region:   u.Host,
		Endpoint: u.Query().Get("endpoint"),
	}
	if u.User != nil {
		opts.AccessKeyID = u.User.Username()
		opts.SecretAccessKey, _ = u.User.Password()
	}
	return opts, nil
}
