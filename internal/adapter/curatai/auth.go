package curatai

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
)

// Signup реализует метод AuthAPI. Запрос идет без Bearer-заголовка.
func (c *Client) Signup(ctx context.Context, in ports.SignupRequest) (*ports.SignupResponse, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/auth/signup", in)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := c.do(c.httpClient, req, "auth_signup", &raw); err != nil {
		return nil, err
	}

	out := &ports.SignupResponse{Raw: raw}
	if msg, ok := raw["message"].(string); ok {
		out.Message = msg
	}
	return out, nil
}

// Login реализует метод AuthAPI.
func (c *Client) Login(ctx context.Context, in ports.LoginRequest) (*ports.LoginResponse, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/auth/login", in)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.do(c.httpClient, req, "auth_login", &raw); err != nil {
		return nil, err
	}

	var out ports.LoginResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
	}
	return &out, nil
}
