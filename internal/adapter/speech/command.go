package speech

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/GoArmGo/CuratAI/internal/domain"
)

// CommandTranscriber распознает речь внешней командой (SPEECH_COMMAND).
// Команда должна записать одну фразу и напечатать текст в stdout.
type CommandTranscriber struct {
	path   string
	args   []string
	logger *slog.Logger
}

// NewCommandTranscriber разбирает строку команды и ищет исполняемый файл в PATH.
// Пустая строка или отсутствующий файл дают недоступный транскрайбер.
func NewCommandTranscriber(command string, logger *slog.Logger) *CommandTranscriber {
	t := &CommandTranscriber{logger: logger}

	fields := strings.Fields(command)
	if len(fields) == 0 {
		return t
	}
	path, err := exec.LookPath(fields[0])
	if err != nil {
		logger.Debug("speech command not found", "command", fields[0], "error", err)
		return t
	}
	t.path = path
	t.args = fields[1:]
	return t
}

func (t *CommandTranscriber) Available() bool {
	return t.path != ""
}

// Transcribe запускает команду и возвращает распознанный текст.
func (t *CommandTranscriber) Transcribe(ctx context.Context) (string, error) {
	if !t.Available() {
		return "", domain.ErrUnsupported
	}

	start := time.Now()
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.path, t.args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.logger.Error("speech command failed",
			"command", t.path,
			"stderr", strings.TrimSpace(stderr.String()),
			"error", err,
		)
		return "", fmt.Errorf("speech command %s: %w", t.path, err)
	}

	text := strings.TrimSpace(stdout.String())
	t.logger.Info("speech transcribed",
		"chars", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
