package rabbitmq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"classlive/internal/config"
	"classlive/internal/metrics"
	"classlive/internal/queue"
)

// noopPublisher is the configured fallback when no broker is set or the
// broker was unreachable at startup: notifications are dropped, not queued.
type noopPublisher struct {
	log *zap.Logger
}

func (n *noopPublisher) Publish(ctx context.Context, payload []byte) error {
	_ = ctx
	_ = payload
	metrics.NotificationsDropped.Inc()
	n.log.Debug("no broker configured, dropping notification")
	return nil
}

type Publisher struct {
	url    string
	queue  string
	logger *zap.Logger
}

// NewPublisher probes the broker once at startup. When the URL is unset or
// the probe fails the returned publisher is a no-op; dispatch callers never
// see broker trouble as a domain failure.
func NewPublisher(cfg *config.Config, logger *zap.Logger) queue.Publisher {
	if cfg.RabbitMQURL == "" {
		logger.Warn("RabbitMQ URL not configured, notification dispatch disabled")
		return &noopPublisher{log: logger}
	}
	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Warn("RabbitMQ unreachable at startup, notification dispatch disabled", zap.Error(err))
		return &noopPublisher{log: logger}
	}
	_ = conn.Close()
	return &Publisher{url: cfg.RabbitMQURL, queue: cfg.RabbitQueue, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, payload []byte) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.queue,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	headers := amqp.Table{}
	otel.GetTextMapPropagator().Inject(ctx, amqpHeaderCarrier(headers))

	if err := ch.PublishWithContext(ctx,
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Headers:      headers,
			Body:         payload,
		},
	); err != nil {
		p.logger.Error("rabbitmq publish failed", zap.Error(err))
		return err
	}

	return nil
}

var _ propagation.TextMapCarrier = amqpHeaderCarrier{}
