// Package backend opens the backing store selected by configuration.
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"projdocs/internal/config"
	"projdocs/internal/database"
	"projdocs/internal/database/migration"
	"projdocs/internal/logging"
	"projdocs/internal/store"
	"projdocs/internal/store/memory"
	"projdocs/internal/store/objectstore"
	"projdocs/internal/store/postgres"
)

// Backend is an opened store plus the resources it owns.
type Backend struct {
	store.Store
	Kind string
	db   *sql.DB
}

// PingContext checks the record database. The in-memory backend is always reachable.
func (b *Backend) PingContext(ctx context.Context) error {
	if b.db == nil {
		return nil
	}
	return b.db.PingContext(ctx)
}

// Close releases the database pool, if any.
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Open builds the store named by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*Backend, error) {
	log = logging.OrNop(log).Named("store")
	kind := strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	switch kind {
	case "", "memory", "mem", "inmem":
		log.Info("store_opened", zap.String("event", "store_open"), zap.String("backend", "memory"))
		return &Backend{Store: memory.New(memory.WithChunkSize(cfg.Store.ChunkSize)), Kind: "memory"}, nil
	case "remote", "postgres":
		return openRemote(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func openRemote(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*Backend, error) {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open record database: %w", err)
	}
	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		_ = db.Close()
		return nil, err
	}
	files, err := objectstore.New(ctx, cfg.MinIO, cfg.Store.ChunkSize)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open object store: %w", err)
	}
	log.Info("store_opened",
		zap.String("event", "store_open"),
		zap.String("backend", "remote"),
		zap.String("db_host", cfg.Database.Host),
		zap.String("bucket", cfg.MinIO.Bucket),
	)
	return &Backend{
		Store: NewRemote(postgres.NewRecords(db), files),
		Kind:  "remote",
		db:    db,
	}, nil
}
