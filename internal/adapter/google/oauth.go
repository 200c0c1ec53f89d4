package google

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

// Flow проводит loopback authorization-code flow и возвращает ID-токен.
type Flow struct {
	config *oauth2.Config
	addr   string
	logger *slog.Logger

	// OnAuthURL вызывается с адресом страницы согласия, которую нужно открыть в браузере.
	OnAuthURL func(url string)
}

// NewFlow создает Flow. port - порт loopback-сервера для callback.
func NewFlow(clientID, clientSecret, port string, logger *slog.Logger) *Flow {
	addr := net.JoinHostPort("127.0.0.1", port)
	return &Flow{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     googleoauth.Endpoint,
			RedirectURL:  "http://" + addr + "/callback",
			Scopes:       []string{"openid", "email", "profile"},
		},
		addr:   addr,
		logger: logger,
	}
}

// WithEndpoint подменяет адреса Google (для тестов).
func (f *Flow) WithEndpoint(ep oauth2.Endpoint) *Flow {
	f.config.Endpoint = ep
	return f
}

type callbackResult struct {
	code string
	err  error
}

// IDToken ждет callback, обменивает код на токены и возвращает id_token.
func (f *Flow) IDToken(ctx context.Context) (string, error) {
	state, err := randomState()
	if err != nil {
		return "", err
	}

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Addr:              f.addr,
		Handler:           f.callbackRouter(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", f.addr)
	if err != nil {
		return "", fmt.Errorf("listen for oauth callback on %s: %w", f.addr, err)
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.logger.Error("oauth callback server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := f.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
	f.logger.Info("waiting for google consent", "redirect_url", f.config.RedirectURL)
	if f.OnAuthURL != nil {
		f.OnAuthURL(authURL)
	}

	var res callbackResult
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res = <-results:
	}
	if res.err != nil {
		return "", res.err
	}

	token, err := f.config.Exchange(ctx, res.code)
	if err != nil {
		return "", fmt.Errorf("exchange google authorization code: %w", err)
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", errors.New("google token response has no id_token")
	}
	return idToken, nil
}

func (f *Flow) callbackRouter(state string, results chan<- callbackResult) http.Handler {
	r := chi.NewRouter()
	r.Get("/callback", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()

		var res callbackResult
		switch {
		case q.Get("error") != "":
			res.err = fmt.Errorf("google consent failed: %s", q.Get("error"))
		case q.Get("state") != state:
			res.err = errors.New("oauth state mismatch")
		case q.Get("code") == "":
			res.err = errors.New("no credential provided by Google")
		default:
			res.code = q.Get("code")
		}

		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			_, _ = w.Write([]byte("Signed in. You can close this tab and return to the terminal.\n"))
		}

		select {
		case results <- res:
		default:
		}
	})
	return r
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
