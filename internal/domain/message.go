package domain

import "time"

// MessageType - тип записи в ленте галереи.
type MessageType string

const (
	MessageUpload MessageType = "upload"
	MessageUser   MessageType = "user"
	MessageAI     MessageType = "ai"
)

// Message - запись клиентской ленты (загрузки, запросы поиска и ответы).
// Никогда не сохраняется.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content,omitempty"`
	Images    []Image     `json:"images,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	IsLoading bool        `json:"is_loading,omitempty"`
}
