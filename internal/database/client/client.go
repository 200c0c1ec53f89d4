package client

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/GoArmGo/CuratAI/internal/database/migrations"
)

const sqlitePrefix = "sqlite3://"

// Client держит подключение к хранилищу сессии.
// По умолчанию это локальный файл SQLite, для общего хранилища можно указать postgres:// DSN.
type Client struct {
	DB     *sqlx.DB
	logger *slog.Logger
}

// NewClient открывает подключение по DSN и применяет миграции.
func NewClient(dsn string, logger *slog.Logger) (*Client, error) {
	start := time.Now()

	driver, source, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}

	if driver == "sqlite3" {
		if err := os.MkdirAll(filepath.Dir(source), 0o700); err != nil {
			return nil, fmt.Errorf("create session directory: %w", err)
		}
	}

	db, err := sqlx.Connect(driver, source)
	if err != nil {
		logger.Error("failed to open session store connection", "driver", driver, "error", err)
		return nil, fmt.Errorf("open session store: %w", err)
	}

	if driver == "sqlite3" {
		// sqlite не любит конкурентную запись из нескольких соединений
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := applyMigrations(dsn); err != nil {
		_ = db.Close()
		logger.Error("failed to apply session store migrations", "error", err)
		return nil, err
	}

	logger.Debug("session store ready",
		"driver", driver,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Client{DB: db, logger: logger}, nil
}

// parseDSN возвращает имя драйвера database/sql и строку подключения для него.
func parseDSN(dsn string) (driver, source string, err error) {
	switch {
	case strings.HasPrefix(dsn, sqlitePrefix):
		path := strings.TrimPrefix(dsn, sqlitePrefix)
		if path == "" {
			return "", "", fmt.Errorf("empty sqlite path in session DSN")
		}
		return "sqlite3", path, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported session DSN %q: expected sqlite3:// or postgres://", dsn)
	}
}

// applyMigrations применяет встроенные миграции к хранилищу.
func applyMigrations(dsn string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	if err := c.DB.Close(); err != nil {
		c.logger.Error("failed to close session store connection", "error", err)
		return err
	}
	return nil
}
