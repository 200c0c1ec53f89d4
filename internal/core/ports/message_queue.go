package ports

import (
	"context"

	"github.com/GoArmGo/CuratAI/internal/messaging/payloads"
)

// UploadJobPublisher публикует задания на загрузку архивов
type UploadJobPublisher interface {
	PublishUploadJob(ctx context.Context, job payloads.UploadJob) error
}

// UploadJobConsumer потребляет задания на загрузку архивов.
// handler вызывается для каждого сообщения
type UploadJobConsumer interface {
	StartConsumingUploadJobs(ctx context.Context, handler func(context.Context, payloads.UploadJob) error) error
}
