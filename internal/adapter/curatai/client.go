// internal/adapter/curatai/client.go
package curatai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/domain"
)

// Client представляет клиент бэкенда CuratAI.
// Токен читается из хранилища сессии заново на каждом запросе.
type Client struct {
	baseURL      string
	httpClient   *http.Client // для JSON-запросов
	uploadClient *http.Client // для multipart-загрузок архивов
	session      ports.SessionStore
	logger       *slog.Logger
}

// Options - параметры клиента.
type Options struct {
	BaseURL        string
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
	Transport      http.RoundTripper
}

// NewClient создает новый экземпляр Client.
func NewClient(opts Options, session ports.SessionStore, logger *slog.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		httpClient:   &http.Client{Timeout: opts.RequestTimeout, Transport: opts.Transport},
		uploadClient: &http.Client{Timeout: opts.UploadTimeout, Transport: opts.Transport},
		session:      session,
		logger:       logger,
	}
}

// BaseURL возвращает адрес бэкенда.
func (c *Client) BaseURL() string { return c.baseURL }

// newRequest строит запрос к бэкенду. body == nil - запрос без тела.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request %s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("X-Request-Id", uuid.NewString())
	return req, nil
}

// newJSONRequest сериализует payload и строит запрос с Content-Type: application/json.
func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	return c.newRequest(ctx, method, path, body, "application/json")
}

// authorize добавляет Bearer-заголовок, читая токен из хранилища в момент вызова.
func (c *Client) authorize(req *http.Request) error {
	token, ok, err := c.session.Get(req.Context(), domain.KeyAccessToken)
	if err != nil {
		return fmt.Errorf("read access token: %w", err)
	}
	if !ok || token == "" {
		c.logger.Error("no access token found in session store")
		return domain.ErrUnauthenticated
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// do выполняет запрос, проверяет статус и декодирует JSON-ответ в out (если out != nil).
func (c *Client) do(hc *http.Client, req *http.Request, endpoint string, out any) error {
	start := time.Now()

	resp, err := hc.Do(req)
	if err != nil {
		observe(endpoint, "error", time.Since(start))
		return fmt.Errorf("request %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	observe(endpoint, statusLabel(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		apiErr := newAPIError(resp.StatusCode, bodyBytes)
		c.logger.Error("backend returned error",
			"endpoint", endpoint,
			"status", resp.StatusCode,
			"message", apiErr.Message,
			"request_id", req.Header.Get("X-Request-Id"),
		)
		return apiErr
	}

	c.logger.Debug("backend call completed",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// call - общий путь для авторизованных JSON-запросов.
func (c *Client) call(ctx context.Context, method, path, endpoint string, payload, out any) error {
	req, err := c.newJSONRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if err := c.authorize(req); err != nil {
		return err
	}
	return c.do(c.httpClient, req, endpoint, out)
}

// FetchImage скачивает изображение по абсолютному URL (без авторизации: ссылки ведут в хранилище).
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create image request: %w", err)
	}

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download image %s: %w", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download image %s: unexpected status %s", imageURL, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read image %s: %w", imageURL, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
