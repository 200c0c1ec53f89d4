// Package view содержит view-модели клиента: состояние экранов и операции над ним.
// Рендеринг живет в internal/app, здесь только данные и правила.
package view

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// loader отслеживает поколение загрузок, привязанных к проекту.
// Смена проекта отменяет контекст прошлых загрузок, а их поздние результаты
// отбрасываются по номеру поколения.
type loader struct {
	mu     sync.Mutex
	base   context.Context
	ctx    context.Context
	cancel context.CancelFunc
	gen    uint64
	wg     sync.WaitGroup
}

func newLoader(base context.Context) *loader {
	if base == nil {
		base = context.Background()
	}
	return &loader{base: base, ctx: base}
}

// reset отменяет текущее поколение и начинает новое.
func (l *loader) reset() (context.Context, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
	}
	l.ctx, l.cancel = context.WithCancel(l.base)
	l.gen++
	return l.ctx, l.gen
}

// snapshot возвращает контекст и номер текущего поколения без его смены.
func (l *loader) snapshot() (context.Context, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ctx, l.gen
}

func (l *loader) current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen == gen
}

// run запускает загрузки конкурентно в фоне. Ошибки обрабатывают сами функции.
func (l *loader) run(ctx context.Context, fns ...func(context.Context) error) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		var g errgroup.Group
		for _, fn := range fns {
			g.Go(func() error { return fn(ctx) })
		}
		_ = g.Wait()
	}()
}

// wait ждет завершения всех запущенных загрузок.
func (l *loader) wait() { l.wg.Wait() }

func (l *loader) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
}
