package storage

import (
	"context"
	"fmt"

	"github.com/IgorGrieder/slugs/internal/config"
	"github.com/IgorGrieder/slugs/internal/infrastructure/db"
	"github.com/IgorGrieder/slugs/internal/infrastructure/logger"
	"github.com/IgorGrieder/slugs/internal/processing/apikeys"
	"github.com/IgorGrieder/slugs/internal/processing/links"
	"github.com/IgorGrieder/slugs/internal/storage/memory"
	mongoStorage "github.com/IgorGrieder/slugs/internal/storage/mongo"
	postgresStorage "github.com/IgorGrieder/slugs/internal/storage/postgres"
	"go.uber.org/zap"
)

// Backend is the record store selected by STORAGE_BACKEND.
type Backend struct {
	Name    string
	Links   links.LinkRepository
	APIKeys apikeys.Repository
	Ping    func(ctx context.Context) error
	Close   func()
}

func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendMongo:
		return openMongo(ctx, cfg)
	case config.BackendPostgres:
		return openPostgres(ctx, cfg)
	case config.BackendMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		return &Backend{
			Name:    config.BackendMemory,
			Links:   memory.NewLinksRepository(),
			APIKeys: memory.NewAPIKeysRepository(),
			Ping:    func(context.Context) error { return nil },
			Close:   func() {},
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func openMongo(ctx context.Context, cfg *config.Config) (*Backend, error) {
	conn, err := db.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database, 0)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	closeConn := func() { _ = conn.Disconnect() }

	linkRepo, err := mongoStorage.NewLinksRepository(ctx, conn)
	if err != nil {
		closeConn()
		return nil, fmt.Errorf("init mongodb links repository: %w", err)
	}
	keyRepo, err := mongoStorage.NewAPIKeysRepository(ctx, conn)
	if err != nil {
		closeConn()
		return nil, fmt.Errorf("init mongodb api keys repository: %w", err)
	}

	logger.Info("Storage backend selected", zap.String("backend", config.BackendMongo))
	return &Backend{
		Name:    config.BackendMongo,
		Links:   linkRepo,
		APIKeys: keyRepo,
		Ping:    conn.Ping,
		Close:   closeConn,
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*Backend, error) {
	pgConn, err := db.ConnectPostgres(ctx, db.PostgresConfig{
		DSN:      cfg.Postgres.DSN,
		MaxConns: int32(cfg.Postgres.MaxConns),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := postgresStorage.Migrate(ctx, pgConn); err != nil {
		pgConn.Close()
		return nil, err
	}

	linkRepo, err := postgresStorage.NewLinksRepository(pgConn)
	if err != nil {
		pgConn.Close()
		return nil, fmt.Errorf("init postgres links repository: %w", err)
	}
	keyRepo, err := postgresStorage.NewAPIKeysRepository(pgConn)
	if err != nil {
		pgConn.Close()
		return nil, fmt.Errorf("init postgres api keys repository: %w", err)
	}

	logger.Info("Storage backend selected", zap.String("backend", config.BackendPostgres))
	return &Backend{
		Name:    config.BackendPostgres,
		Links:   linkRepo,
		APIKeys: keyRepo,
		Ping:    pgConn.Ping,
		Close:   pgConn.Close,
	}, nil
}
