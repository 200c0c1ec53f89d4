package ports

import "context"

// Transcriber распознает одну голосовую фразу.
type Transcriber interface {
	Available() bool
	Transcribe(ctx context.Context) (string, error)
}
