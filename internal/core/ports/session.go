package ports

import "context"

// SessionStore - персистентное хранилище ключ/значение (аналог localStorage).
// Пишется редко, читается на каждом запросе.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Clear удаляет все ключи.
	Clear(ctx context.Context) error
}
