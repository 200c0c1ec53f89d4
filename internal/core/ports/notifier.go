package ports

// Level - уровень пользовательского уведомления.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier показывает пользователю закрываемое уведомление (toast).
type Notifier interface {
	Notify(level Level, message string)
}
