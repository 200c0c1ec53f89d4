package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
)

const (
	msgSignupFailed       = "Signup failed"
	msgLoginFailed        = "Login failed"
	msgGoogleSignupFailed = "Google Signup failed"
	msgGoogleLoginFailed  = "Google Login failed"
	msgVerificationSent   = "A verification link has been sent to your email"
	msgVerifyEmail        = "Please verify your email to continue. Check your inbox for a verification link."
	msgEmailRegistered    = "This email is already registered. Please use a different email or sign in."
	msgEmailNotRegistered = "This email is not registered. Please sign up or try a different email."
)

// AuthResult - результат входа/регистрации. Ошибки за эту границу не выходят.
// Errors заполняется для ошибок конкретных полей формы, Notice - для информационного сообщения.
type AuthResult struct {
	Success bool
	Data    any
	Message string
	Notice  string
	Errors  domain.FieldErrors
}

// SignupInput - данные формы регистрации.
type SignupInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// AuthUseCase определяет бизнес-логику аутентификации
type AuthUseCase interface {
	Signup(ctx context.Context, in SignupInput) AuthResult
	Login(ctx context.Context, email, password string) AuthResult
	GoogleSignup(ctx context.Context, idToken string) AuthResult
	GoogleLogin(ctx context.Context, idToken string) AuthResult

	// Logout полностью очищает хранилище сессии.
	Logout(ctx context.Context) error

	// CurrentUser возвращает сохраненного пользователя или domain.ErrUnauthenticated.
	CurrentUser(ctx context.Context) (*domain.User, error)
}

type authUseCase struct {
	api      ports.AuthAPI
	session  ports.SessionStore
	tokens   ports.IDTokenDecoder
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAuthUseCase создает новый экземпляр AuthUseCase
func NewAuthUseCase(api ports.AuthAPI, session ports.SessionStore, tokens ports.IDTokenDecoder, logger *slog.Logger) AuthUseCase {
	return &authUseCase{
		api:      api,
		session:  session,
		tokens:   tokens,
		validate: validator.New(),
		logger:   logger,
	}
}

func (uc *authUseCase) Signup(ctx context.Context, in SignupInput) AuthResult {
	req := ports.SignupRequest{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
	}

	fieldErrs := uc.check(req)
	if req.Password == "" {
		fieldErrs = addFieldError(fieldErrs, "password", "Password is required")
	}
	if in.ConfirmPassword != in.Password {
		fieldErrs = addFieldError(fieldErrs, "confirm_password", "Passwords do not match")
	}
	if len(fieldErrs) > 0 {
		return AuthResult{Message: fieldErrs.Error(), Errors: fieldErrs}
	}

	return uc.signup(ctx, req, msgSignupFailed)
}

func (uc *authUseCase) signup(ctx context.Context, req ports.SignupRequest, fallback string) AuthResult {
	resp, err := uc.api.Signup(ctx, req)
	if err != nil {
		uc.logger.Warn("signup failed", "email", req.Email, "error", err)
		return AuthResult{Message: messageOr(err, fallback)}
	}

	msg := resp.Message
	if msg == "" {
		msg = msgVerificationSent
	}
	uc.logger.Info("signup succeeded", "email", req.Email)
	return AuthResult{Success: true, Data: resp.Raw, Message: msg}
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) AuthResult {
	req := ports.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if fieldErrs := uc.check(req); len(fieldErrs) > 0 {
		return AuthResult{Message: fieldErrs.Error(), Errors: fieldErrs}
	}
	return uc.login(ctx, req, msgLoginFailed)
}

// login считает вход успешным только при наличии токена и пользователя в ответе.
func (uc *authUseCase) login(ctx context.Context, req ports.LoginRequest, fallback string) AuthResult {
	resp, err := uc.api.Login(ctx, req)
	if err != nil {
		uc.logger.Warn("login failed", "email", req.Email, "error", err)
		return AuthResult{Message: messageOr(err, fallback)}
	}

	if resp.AccessToken == "" || resp.User == nil {
		msg := resp.Message
		if msg == "" {
			msg = fallback
		}
		uc.logger.Warn("login rejected", "email", req.Email, "message", msg)
		return AuthResult{Message: msg}
	}

	if err := uc.persist(ctx, resp); err != nil {
		uc.logger.Error("failed to persist session", "error", err)
		return AuthResult{Message: fallback}
	}

	uc.logger.Info("login succeeded", "user_id", resp.User.ID)
	return AuthResult{Success: true, Data: resp}
}

func (uc *authUseCase) persist(ctx context.Context, resp *ports.LoginResponse) error {
	userJSON, err := json.Marshal(resp.User)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := uc.session.Set(ctx, domain.KeyAccessToken, resp.AccessToken); err != nil {
		return err
	}
	return uc.session.Set(ctx, domain.KeyUser, string(userJSON))
}

func (uc *authUseCase) GoogleSignup(ctx context.Context, idToken string) AuthResult {
	claims, err := uc.tokens.Decode(idToken)
	if err != nil {
		return AuthResult{Message: err.Error(), Errors: domain.FieldErrors{"general": err.Error()}}
	}

	username, password := GoogleCredentials(claims.Name, claims.Subject)
	res := uc.signup(ctx, ports.SignupRequest{
		Username: username,
		Email:    claims.Email,
		Password: password,
		GoogleID: claims.Subject,
	}, msgGoogleSignupFailed)

	if !res.Success && strings.Contains(res.Message, "Email already exists") {
		res.Errors = domain.FieldErrors{"email": msgEmailRegistered}
	}
	return res
}

func (uc *authUseCase) GoogleLogin(ctx context.Context, idToken string) AuthResult {
	claims, err := uc.tokens.Decode(idToken)
	if err != nil {
		return AuthResult{Message: err.Error(), Errors: domain.FieldErrors{"general": err.Error()}}
	}

	_, password := GoogleCredentials(claims.Name, claims.Subject)
	res := uc.login(ctx, ports.LoginRequest{Email: claims.Email, Password: password}, msgGoogleLoginFailed)
	if res.Success {
		return res
	}

	switch {
	case strings.Contains(res.Message, "Email not verified"):
		res.Notice = msgVerifyEmail
	case strings.Contains(res.Message, "Email not found"):
		res.Errors = domain.FieldErrors{"email": msgEmailNotRegistered}
	}
	return res
}

// GoogleCredentials выводит имя пользователя и пароль из claims Google-токена.
// Пароль детерминирован и строится из публичного sub; бэкенд пока не поддерживает
// привязку Google-аккаунта без пароля, поэтому схема сохранена.
func GoogleCredentials(name, sub string) (username, password string) {
	base := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, name)

	return base + "_" + lastN(sub, 4), "Google@" + lastN(sub, 8) + "!Aa1"
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func (uc *authUseCase) Logout(ctx context.Context) error {
	if err := uc.session.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (uc *authUseCase) CurrentUser(ctx context.Context) (*domain.User, error) {
	raw, ok, err := uc.session.Get(ctx, domain.KeyUser)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, domain.ErrUnauthenticated
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		uc.logger.Error("invalid user object in session store", "error", err)
		return nil, domain.ErrUnauthenticated
	}
	if user.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return &user, nil
}

// check прогоняет валидатор и переводит ошибки в FieldErrors по json-именам полей.
func (uc *authUseCase) check(v any) domain.FieldErrors {
	err := uc.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.FieldErrors{"general": err.Error()}
	}

	out := domain.FieldErrors{}
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		if _, exists := out[field]; exists {
			continue
		}
		out[field] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	default:
		return name + " is invalid"
	}
}

func addFieldError(fe domain.FieldErrors, field, msg string) domain.FieldErrors {
	if fe == nil {
		fe = domain.FieldErrors{}
	}
	if _, exists := fe[field]; !exists {
		fe[field] = msg
	}
	return fe
}

// messageOr берет сообщение бэкенда из ошибки, иначе возвращает fallback.
func messageOr(err error, fallback string) string {
	if msg := domain.MessageOf(err); msg != "" {
		return msg
	}
	return fallback
}
