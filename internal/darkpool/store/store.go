package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store is the durable store: transactional writes via gorm, hot-path
// candidate reads via sqlx, both sharing one underlying *sql.DB.
type Store struct {
	db     *gorm.DB
	reader *sqlx.DB
	logger *zap.Logger
}

// Open connects to Postgres at dsn and wires both access paths.
func Open(dsn string, logger *zap.Logger) (*Store, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("store: failed to open gorm connection: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("store: failed to extract *sql.DB: %w", err)
	}

	reader := sqlx.NewDb(sqlDB, "pgx")

	return &Store{db: gdb, reader: reader, logger: logger}, nil
}

// Migrate creates/updates the schema for the three tables spec §6 names.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&orderRow{}, &matchRow{}, &sessionKeyRow{})
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB exposes the raw *sql.DB, e.g. for health checks.
func (s *Store) DB() (*sql.DB, error) {
	return s.db.DB()
}
