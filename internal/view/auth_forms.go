package view

import (
	"context"
	"strings"

	"github.com/GoArmGo/CuratAI/internal/domain"
	"github.com/GoArmGo/CuratAI/internal/usecase"
)

// LoginForm - форма входа.
type LoginForm struct {
	auth usecase.AuthUseCase

	Email    string
	Password string

	Errors   domain.FieldErrors
	Notice   string
	Redirect string
}

func NewLoginForm(auth usecase.AuthUseCase) *LoginForm {
	return &LoginForm{auth: auth}
}

// Submit выполняет вход. При успехе выставляет Redirect на /projects.
func (f *LoginForm) Submit(ctx context.Context) bool {
	return f.apply(f.auth.Login(ctx, f.Email, f.Password))
}

// Google выполняет вход по Google ID-токену.
func (f *LoginForm) Google(ctx context.Context, idToken string) bool {
	return f.apply(f.auth.GoogleLogin(ctx, idToken))
}

func (f *LoginForm) apply(res usecase.AuthResult) bool {
	f.Errors, f.Notice, f.Redirect = nil, res.Notice, ""
	if res.Success {
		f.Redirect = "/projects"
		return true
	}
	f.Errors = resultErrors(res)
	return false
}

// SignupForm - форма регистрации.
type SignupForm struct {
	auth usecase.AuthUseCase

	Username        string
	Email           string
	Password        string
	ConfirmPassword string

	Errors  domain.FieldErrors
	Success string
}

func NewSignupForm(auth usecase.AuthUseCase) *SignupForm {
	return &SignupForm{auth: auth}
}

// Submit регистрирует пользователя. При успехе Success содержит сообщение о письме подтверждения.
func (f *SignupForm) Submit(ctx context.Context) bool {
	return f.apply(f.auth.Signup(ctx, usecase.SignupInput{
		Username:        f.Username,
		Email:           f.Email,
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
	}))
}

func (f *SignupForm) Google(ctx context.Context, idToken string) bool {
	return f.apply(f.auth.GoogleSignup(ctx, idToken))
}

func (f *SignupForm) apply(res usecase.AuthResult) bool {
	f.Errors, f.Success = nil, ""
	if res.Success {
		f.Success = res.Message
		return true
	}
	f.Errors = resultErrors(res)
	return false
}

// resultErrors возвращает ошибки полей, а если их нет - общее сообщение под ключом general.
func resultErrors(res usecase.AuthResult) domain.FieldErrors {
	if len(res.Errors) > 0 {
		return res.Errors
	}
	if strings.TrimSpace(res.Message) == "" {
		return nil
	}
	return domain.FieldErrors{"general": res.Message}
}
