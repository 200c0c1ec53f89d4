// Package state хранит общее состояние приложения: выбранный проект и флаг активной загрузки.
package state

import "sync"

// Event - что изменилось в Store.
type Event int

const (
	ProjectChanged Event = iota
	UploadingChanged
)

// Store - явное состояние верхнего уровня, которое разделяют сайдбар, галерея и альбомы.
type Store struct {
	mu        sync.RWMutex
	projectID string
	uploading bool
	listeners []func(Event, *Store)
}

func New() *Store { return &Store{} }

// Subscribe регистрирует обработчик изменений. Обработчики вызываются синхронно
// после снятия блокировки, в порядке регистрации.
func (s *Store) Subscribe(fn func(Event, *Store)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) SelectedProject() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projectID
}

// SelectProject меняет выбранный проект. Пустая строка снимает выбор.
func (s *Store) SelectProject(id string) {
	s.mu.Lock()
	if s.projectID == id {
		s.mu.Unlock()
		return
	}
	s.projectID = id
	s.mu.Unlock()
	s.emit(ProjectChanged)
}

func (s *Store) Uploading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uploading
}

// BeginUpload выставляет флаг загрузки. Возвращает false, если загрузка уже идет.
func (s *Store) BeginUpload() bool {
	s.mu.Lock()
	if s.uploading {
		s.mu.Unlock()
		return false
	}
	s.uploading = true
	s.mu.Unlock()
	s.emit(UploadingChanged)
	return true
}

func (s *Store) EndUpload() {
	s.mu.Lock()
	if !s.uploading {
		s.mu.Unlock()
		return
	}
	s.uploading = false
	s.mu.Unlock()
	s.emit(UploadingChanged)
}

func (s *Store) emit(ev Event) {
	s.mu.RLock()
	listeners := append([]func(Event, *Store){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev, s)
	}
}
