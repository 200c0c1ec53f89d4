package ports

import (
	"context"

	"github.com/GoArmGo/CuratAI/internal/domain"
)

// SignupRequest - тело POST /auth/signup
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
	GoogleID string `json:"google_id,omitempty"`
}

// LoginRequest - тело POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// LoginResponse - ответ логина. Успех определяется наличием токена и пользователя.
type LoginResponse struct {
	Message      string       `json:"message,omitempty"`
	User         *domain.User `json:"user,omitempty"`
	AccessToken  string       `json:"access_token,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
}

// SignupResponse - ответ регистрации.
type SignupResponse struct {
	Message string         `json:"message,omitempty"`
	Raw     map[string]any `json:"-"`
}

// AuthAPI - эндпоинты аутентификации (без Bearer-заголовка)
type AuthAPI interface {
	Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

// GoogleIdentity - поля Google ID-токена, нужные для входа.
type GoogleIdentity struct {
	Subject string
	Name    string
	Email   string
}

// IDTokenDecoder извлекает идентичность из Google ID-токена.
type IDTokenDecoder interface {
	Decode(raw string) (*GoogleIdentity, error)
}
