package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// SessionStore реализует ports.SessionStore поверх таблицы local_storage.
type SessionStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewSessionStore создает новый экземпляр SessionStore
func NewSessionStore(db *sqlx.DB, logger *slog.Logger) *SessionStore {
	return &SessionStore{db: db, logger: logger}
}

func (s *SessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, s.db.Rebind(`SELECT value FROM local_storage WHERE key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		s.logger.Error("failed to read session key", "key", key, "error", err)
		return "", false, fmt.Errorf("select session key %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	start := time.Now()

	query := s.db.Rebind(`
		INSERT INTO local_storage (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		s.logger.Error("failed to write session key", "key", key, "error", err)
		return fmt.Errorf("upsert session key %s: %w", key, err)
	}

	s.logger.Debug("session key stored", "key", key, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Clear удаляет все ключи (выход из аккаунта).
func (s *SessionStore) Clear(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM local_storage`)
	if err != nil {
		s.logger.Error("failed to clear session store", "error", err)
		return fmt.Errorf("clear session store: %w", err)
	}
	n, _ := res.RowsAffected()
	s.logger.Info("session cleared", "keys_removed", n)
	return nil
}
