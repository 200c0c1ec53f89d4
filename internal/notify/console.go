// Package notify показывает пользовательские уведомления в терминале.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
)

// Console печатает уведомления в writer и дублирует их в лог.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	logger *slog.Logger
}

func NewConsole(out io.Writer, logger *slog.Logger) *Console {
	return &Console{out: out, logger: logger}
}

func (c *Console) Notify(level ports.Level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := "·"
	switch level {
	case ports.LevelSuccess:
		prefix = "✓"
	case ports.LevelError:
		prefix = "✗"
	}
	fmt.Fprintf(c.out, "%s %s\n", prefix, message)
	c.logger.Debug("notification shown", "level", string(level), "message", message)
}

// Recorder запоминает уведомления. Используется в тестах view-моделей и в неинтерактивных командах.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

type Entry struct {
	Level   ports.Level
	Message string
}

func (r *Recorder) Notify(level ports.Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: message})
}

func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Messages возвращает тексты уведомлений заданного уровня.
func (r *Recorder) Messages(level ports.Level) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}
