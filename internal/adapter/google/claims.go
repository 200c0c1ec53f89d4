package google

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
)

// Claims - поля Google ID-токена, нужные клиенту.
type Claims struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// DecodeIDToken разбирает ID-токен без проверки подписи.
// Подпись проверяет бэкенд, клиенту нужны только name, email и sub.
func DecodeIDToken(raw string) (*Claims, error) {
	if raw == "" {
		return nil, errors.New("no credential provided by Google")
	}

	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, fmt.Errorf("decode google id token: %w", err)
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, errors.New("google id token is missing sub or email")
	}
	return &claims, nil
}

// IDTokenDecoder реализует ports.IDTokenDecoder поверх DecodeIDToken.
type IDTokenDecoder struct{}

func (IDTokenDecoder) Decode(raw string) (*ports.GoogleIdentity, error) {
	claims, err := DecodeIDToken(raw)
	if err != nil {
		return nil, err
	}
	return &ports.GoogleIdentity{Subject: claims.Subject, Name: claims.Name, Email: claims.Email}, nil
}
