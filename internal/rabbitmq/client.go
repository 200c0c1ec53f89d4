package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/GoArmGo/CuratAI/internal/config"
	"github.com/GoArmGo/CuratAI/internal/messaging/payloads"
)

// Client публикует и потребляет задания на загрузку архивов.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient подключается к RabbitMQ и объявляет durable-очередь заданий.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg.RabbitMQ.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is not set")
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// по одному неподтвержденному заданию на потребителя
	if err := ch.Qos(1, 0, false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to set channel qos: %w", err)
	}

	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	logger.Info("rabbitmq queue declared", "queue", q.Name, "messages", q.Messages)
	return &Client{conn: conn, channel: ch, queue: q, logger: logger}, nil
}

// Close закрывает канал и соединение.
func (c *Client) Close() {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("error closing RabbitMQ channel", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Warn("error closing RabbitMQ connection", "error", err)
		}
	}
}

// PublishUploadJob ставит задание на загрузку архива в очередь.
func (c *Client) PublishUploadJob(ctx context.Context, job payloads.UploadJob) error {
	body, err := encodeJob(job)
	if err != nil {
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish upload job: %w", err)
	}

	c.logger.Info("upload job published", "queue", c.queue.Name, "project_id", job.ProjectID, "zip_path", job.ZipPath)
	return nil
}

// StartConsumingUploadJobs регистрирует потребителя и обрабатывает задания в горутине
// до отмены ctx или закрытия канала.
func (c *Client) StartConsumingUploadJobs(ctx context.Context, handler func(context.Context, payloads.UploadJob) error) error {
	msgs, err := c.channel.Consume(
		c.queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered", "queue", c.queue.Name)

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("rabbitmq channel closed, stopping consumer")
					return
				}
				c.handle(ctx, msg, handler)
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping consumer")
				return
			}
		}
	}()

	return nil
}

// acknowledger - часть amqp.Delivery, нужная для подтверждения.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Client) handle(ctx context.Context, msg amqp.Delivery, handler func(context.Context, payloads.UploadJob) error) {
	settle(ctx, c.logger, msg.Body, &msg, handler)
}

// settle декодирует задание, вызывает handler и подтверждает сообщение.
// Битое сообщение отбрасывается, ошибка обработки возвращает его в очередь.
func settle(ctx context.Context, logger *slog.Logger, body []byte, ack acknowledger, handler func(context.Context, payloads.UploadJob) error) {
	job, err := decodeJob(body)
	if err != nil {
		logger.Error("invalid upload job", "error", err, "body", string(body))
		if err := ack.Nack(false, false); err != nil {
			logger.Error("error NACKing message", "error", err)
		}
		return
	}

	start := time.Now()
	if err := handler(ctx, job); err != nil {
		logger.Error("upload job failed", "project_id", job.ProjectID, "error", err)
		if err := ack.Nack(false, true); err != nil {
			logger.Error("error NACKing message", "error", err)
		}
		return
	}

	if err := ack.Ack(false); err != nil {
		logger.Error("error ACKing message", "error", err)
		return
	}
	logger.Info("upload job processed",
		"project_id", job.ProjectID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func encodeJob(job payloads.UploadJob) ([]byte, error) {
	if job.ProjectID == "" || job.ZipPath == "" {
		return nil, fmt.Errorf("upload job needs project_id and zip_path")
	}
	body, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upload job: %w", err)
	}
	return body, nil
}

func decodeJob(body []byte) (payloads.UploadJob, error) {
	var job payloads.UploadJob
	if err := json.Unmarshal(body, &job); err != nil {
		return job, fmt.Errorf("failed to unmarshal upload job: %w", err)
	}
	if job.ProjectID == "" || job.ZipPath == "" {
		return job, fmt.Errorf("upload job needs project_id and zip_path")
	}
	return job, nil
}
