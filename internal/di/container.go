package di

import (
	"context"
	"fmt"
	"os"

	"github.com/GoArmGo/CuratAI/internal/adapter/curatai"
	"github.com/GoArmGo/CuratAI/internal/adapter/google"
	"github.com/GoArmGo/CuratAI/internal/adapter/speech"
	"github.com/GoArmGo/CuratAI/internal/adapter/storage/minio"
	"github.com/GoArmGo/CuratAI/internal/app"
	"github.com/GoArmGo/CuratAI/internal/config"
	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/database/client"
	"github.com/GoArmGo/CuratAI/internal/database/storage"
	"github.com/GoArmGo/CuratAI/internal/logger"
	"github.com/GoArmGo/CuratAI/internal/notify"
	"github.com/GoArmGo/CuratAI/internal/rabbitmq"
	"github.com/GoArmGo/CuratAI/internal/usecase"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
// Необязательные интеграции (MinIO, RabbitMQ, Google, голосовой ввод) подключаются,
// только если настроены; в режиме worker RabbitMQ обязателен.
func BuildApp(ctx context.Context, mode string) (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Debug("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	deps := app.Deps{
		Config: cfg,
		Logger: slogger,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
	deps.Notifier = notify.NewConsole(os.Stdout, slogger)

	// 2. Хранилище сессии
	dbClient, err := client.NewClient(cfg.SessionDSN, slogger)
	if err != nil {
		return nil, err
	}
	deps.Closers = append(deps.Closers, dbClient.Close)
	deps.Session = storage.NewSessionStore(dbClient.DB, slogger)

	// 3. Клиент бэкенда
	api := curatai.NewClient(curatai.Options{
		BaseURL:        cfg.BackendURL,
		RequestTimeout: cfg.RequestTimeout,
		UploadTimeout:  cfg.UploadTimeout,
	}, deps.Session, slogger)
	deps.API = api

	// 4. Бизнес-логика
	deps.Auth = usecase.NewAuthUseCase(api, deps.Session, google.IDTokenDecoder{}, slogger)
	deps.Ingest = usecase.NewIngestUseCase(api.Images(), slogger)
	deps.Cropper = usecase.NewFaceCropper(api, cfg.FaceMaxSize, slogger)

	// 5. Экспорт альбомов в MinIO / S3
	var fileStorage ports.FileStorage
	if cfg.MinioEnabled() {
		minioClient, err := minio.NewMinioClient(ctx, cfg, slogger)
		if err != nil {
			slogger.Warn("minio export disabled", "error", err)
		} else {
			fileStorage = minioClient
		}
	}
	deps.Exporter = usecase.NewAlbumExporter(api.Albums(), api, fileStorage, cfg.ExportRate, slogger)

	// 6. Очередь загрузок
	if cfg.RabbitMQ.RabbitMQURL != "" || mode == "worker" {
		rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
		switch {
		case err != nil && mode == "worker":
			return nil, err
		case err != nil:
			slogger.Warn("queued uploads disabled", "error", err)
		default:
			deps.Publisher = rabbitMQClient
			deps.Consumer = rabbitMQClient
			deps.Closers = append(deps.Closers, func() error {
				rabbitMQClient.Close()
				return nil
			})
		}
	}

	// 7. Google и голосовой ввод
	if cfg.GoogleEnabled() {
		flow := google.NewFlow(cfg.GoogleClientID, cfg.GoogleSecret, cfg.OAuthPort, slogger)
		flow.OnAuthURL = func(url string) {
			fmt.Fprintf(os.Stdout, "Open this link in your browser to continue with Google:\n%s\n", url)
		}
		deps.Google = flow
	}
	deps.Transcriber = speech.NewCommandTranscriber(cfg.SpeechCommand, slogger)

	slogger.Debug("dependencies initialized",
		"backend", cfg.BackendURL,
		"minio", fileStorage != nil,
		"queue", deps.Publisher != nil,
		"google", deps.Google != nil,
		"voice", deps.Transcriber.Available(),
	)
	return app.NewApp(deps), nil
}

