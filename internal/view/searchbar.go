package view

import (
	"context"
	"strings"
	"sync"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
)

// SearchBar - поле запроса с опциональным голосовым вводом.
type SearchBar struct {
	transcriber ports.Transcriber
	notifier    ports.Notifier
	onSearch    func(query string) error

	mu            sync.Mutex
	query         string
	voiceDisabled bool
	recording     bool
}

// NewSearchBar создает SearchBar. transcriber может быть nil.
func NewSearchBar(transcriber ports.Transcriber, notifier ports.Notifier, onSearch func(string) error) *SearchBar {
	return &SearchBar{transcriber: transcriber, notifier: notifier, onSearch: onSearch}
}

func (b *SearchBar) SetQuery(q string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.query = q
}

func (b *SearchBar) Query() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// VoiceEnabled сообщает, доступен ли голосовой ввод.
func (b *SearchBar) VoiceEnabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.voiceDisabled && b.transcriber != nil && b.transcriber.Available()
}

func (b *SearchBar) Recording() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.recording
}

// Submit отправляет непустой запрос и очищает поле.
func (b *SearchBar) Submit() error {
	b.mu.Lock()
	q := b.query
	if strings.TrimSpace(q) == "" {
		b.mu.Unlock()
		return nil
	}
	b.query = ""
	b.mu.Unlock()

	return b.onSearch(q)
}

// Voice распознает одну фразу в поле запроса и при autoSubmit сразу отправляет ее.
// Если распознавание недоступно, уведомляет один раз и отключает голосовой ввод.
func (b *SearchBar) Voice(ctx context.Context, autoSubmit bool) error {
	b.mu.Lock()
	if b.voiceDisabled {
		b.mu.Unlock()
		return domain.ErrUnsupported
	}
	if b.transcriber == nil || !b.transcriber.Available() {
		b.voiceDisabled = true
		b.mu.Unlock()
		b.notifier.Notify(ports.LevelError, "Voice recognition is not supported")
		return domain.ErrUnsupported
	}
	if b.recording {
		b.mu.Unlock()
		return domain.ErrBusy
	}
	b.recording = true
	b.mu.Unlock()

	b.notifier.Notify(ports.LevelInfo, "Listening... Speak now")
	text, err := b.transcriber.Transcribe(ctx)

	b.mu.Lock()
	b.recording = false
	if err != nil {
		b.mu.Unlock()
		b.notifier.Notify(ports.LevelError, "Voice recognition failed. Please try again.")
		return err
	}
	b.query = strings.TrimSpace(text)
	b.mu.Unlock()

	if autoSubmit {
		return b.Submit()
	}
	return nil
}
