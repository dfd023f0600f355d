package pantry

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"pantry-chef/internal/infrastructure/config"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS pantry_items (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	quantity   TEXT NOT NULL,
	expiry     TEXT NULL,
	created_at TIMESTAMP NOT NULL
)`

const postgresSchema = `CREATE TABLE IF NOT EXISTS pantry_items (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	quantity   TEXT NOT NULL,
	expiry     TEXT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

// NewDB 開啟食材庫存資料庫（sqlite3 或 pgx）並建立資料表
func NewDB(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite3" && strings.Contains(cfg.DSN, ":memory:") {
		// :memory: 每條連線都是獨立的資料庫
		db.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpen > 0 {
			db.SetMaxOpenConns(cfg.MaxOpen)
		}
		if cfg.MaxIdle > 0 {
			db.SetMaxIdleConns(cfg.MaxIdle)
		}
	}

	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema 建立 pantry_items 資料表，已存在時不做任何事
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == "pgx" {
		schema = postgresSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating pantry schema: %w", err)
	}
	return nil
}
