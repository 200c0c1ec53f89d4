package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/CuratAI/internal/adapter/curatai"
	"github.com/GoArmGo/CuratAI/internal/config"
	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/usecase"
)

// GoogleSignIn получает ID-токен Google (loopback OAuth flow).
type GoogleSignIn interface {
	IDToken(ctx context.Context) (string, error)
}

// Deps - собранные зависимости приложения.
type Deps struct {
	Config *config.Config
	Logger *slog.Logger

	Session     ports.SessionStore
	API         *curatai.Client
	Auth        usecase.AuthUseCase
	Ingest      usecase.IngestUseCase
	Cropper     *usecase.FaceCropper
	Exporter    *usecase.AlbumExporter
	Transcriber ports.Transcriber
	Google      GoogleSignIn // nil, если вход через Google не настроен

	Publisher ports.UploadJobPublisher // nil без RABBITMQ_URL
	Consumer  ports.UploadJobConsumer  // nil без RABBITMQ_URL

	Notifier ports.Notifier
	In       io.Reader
	Out      io.Writer

	// Closers закрываются в Shutdown в обратном порядке.
	Closers []func() error
}

type App struct {
	Deps
}

func NewApp(deps Deps) *App {
	return &App{Deps: deps}
}

// LoggerIns возвращает основной логгер приложения.
func (a *App) LoggerIns() *slog.Logger {
	return a.Logger
}

// Run выполняет приложение в заданном режиме:
// cli - одна команда из args (или интерактивный shell), worker - потребитель очереди загрузок.
func (a *App) Run(ctx context.Context, mode string, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer func() {
		if err := a.Shutdown(); err != nil {
			a.Logger.Error("shutdown failed", "error", err)
		}
	}()

	a.Logger.Debug("running", "mode", mode, "args", len(args))

	switch mode {
	case "cli":
		return a.runCommand(ctx, args)
	case "worker":
		return a.runWorker(ctx)
	default:
		return fmt.Errorf("unknown mode: %s (use 'cli' or 'worker')", mode)
	}
}

// Shutdown закрывает все ресурсы приложения.
func (a *App) Shutdown() error {
	var errs []error
	for i := len(a.Closers) - 1; i >= 0; i-- {
		if err := a.Closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.Closers = nil
	return errors.Join(errs...)
}
