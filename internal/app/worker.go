package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/GoArmGo/CuratAI/internal/domain"
	"github.com/GoArmGo/CuratAI/internal/handler"
	"github.com/GoArmGo/CuratAI/internal/messaging/payloads"
)

// workerStats - счетчики обработанных заданий для /healthz.
type workerStats struct {
	processed atomic.Int64
	failed    atomic.Int64
	stopping  atomic.Bool
}

// runWorker потребляет задания на загрузку архивов и отдает /healthz и /metrics.
func (a *App) runWorker(ctx context.Context) error {
	if a.Consumer == nil {
		return fmt.Errorf("worker mode needs RABBITMQ_URL: %w", domain.ErrUnsupported)
	}

	stats := &workerStats{}
	server := &http.Server{
		Addr:              net.JoinHostPort("", a.Config.MetricsPort),
		Handler:           handler.NewRouter(a.health(stats), a.Logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.Logger.Info("worker http server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := a.Consumer.StartConsumingUploadJobs(workerCtx, func(ctx context.Context, job payloads.UploadJob) error {
		return a.processUploadJob(ctx, stats, job)
	}); err != nil {
		_ = server.Close()
		return fmt.Errorf("failed to start upload job consumer: %w", err)
	}
	a.Logger.Info("worker started, waiting for upload jobs", "queue", a.Config.RabbitMQ.RabbitMQQueueName)

	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("shutdown signal received, stopping worker")
	case runErr = <-serverErr:
		a.Logger.Error("worker http server failed", "error", runErr)
	}

	stats.stopping.Store(true)
	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.Logger.Info("worker stopped",
		"processed", stats.processed.Load(),
		"failed", stats.failed.Load(),
	)
	return runErr
}

// processUploadJob загружает архив из задания в проект.
func (a *App) processUploadJob(ctx context.Context, stats *workerStats, job payloads.UploadJob) error {
	start := time.Now()
	images, err := a.Ingest.UploadFile(ctx, job.ProjectID, job.ZipPath, nil)
	if err != nil {
		stats.failed.Add(1)
		if permanent(err) {
			// повтор не поможет: задание подтверждается и отбрасывается
			a.Logger.Error("upload job dropped", "project_id", job.ProjectID, "zip_path", job.ZipPath, "error", err)
			return nil
		}
		return fmt.Errorf("upload job for project %s: %w", job.ProjectID, err)
	}

	stats.processed.Add(1)
	a.Logger.Info("archive uploaded by worker",
		"project_id", job.ProjectID,
		"zip_path", job.ZipPath,
		"images", len(images),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// permanent - ошибки, которые не исчезнут при повторной доставке:
// нет архива или проекта, нет сессии, 4xx бэкенда кроме 408 и 429.
func permanent(err error) bool {
	if errors.Is(err, domain.ErrNotZip) ||
		errors.Is(err, domain.ErrNoProject) ||
		errors.Is(err, domain.ErrUnauthenticated) ||
		errors.Is(err, fs.ErrNotExist) {
		return true
	}
	status := domain.StatusOf(err)
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests {
		return false
	}
	return status >= 400 && status < 500
}

func (a *App) health(stats *workerStats) handler.HealthFunc {
	return func() handler.Health {
		status := "ok"
		if stats.stopping.Load() {
			status = "stopping"
		}
		return handler.Health{
			Status:    status,
			Queue:     a.Config.RabbitMQ.RabbitMQQueueName,
			Processed: stats.processed.Load(),
			Failed:    stats.failed.Load(),
		}
	}
}
