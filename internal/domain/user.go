// internal/domain/user.go
package domain

// User представляет пользователя бэкенда CuratAI.
// Клиент хранит только кэшированную копию в хранилище сессии.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	IsActive  bool       `json:"is_active"`
	CreatedAt Timestamp  `json:"created_at"`
	LastLogin *Timestamp `json:"last_login,omitempty"`
}

// Session - токены, выданные при логине. RefreshToken клиент только хранит.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Ключи персистентного хранилища сессии.
const (
	KeyAccessToken = "access_token"
	KeyUser        = "user"
)
