package rabbitmq

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"classlive/internal/config"
	"classlive/internal/metrics"
	"classlive/internal/queue"
)

var _ queue.Consumer = (*Worker)(nil)

// Worker pulls envelopes off the durable queue one at a time and forwards the
// raw payload to the delivery endpoint. Prefetch is 1: the broker holds the
// next envelope until the current one is acked or nacked. A failed delivery
// is requeued with no backoff and no poison limit; a permanently failing
// endpoint loops forever.
type Worker struct {
	url         string
	queue       string
	consumerTag string
	endpoint    string
	workerKey   string
	client      *http.Client
	logger      *zap.Logger
}

func NewWorker(cfg *config.Config, logger *zap.Logger) (*Worker, error) {
	if cfg.WorkerKey == "" {
		return nil, errors.New("worker key is required")
	}
	if cfg.RabbitMQURL == "" {
		return nil, errors.New("rabbitmq url is required")
	}
	return &Worker{
		url:         cfg.RabbitMQURL,
		queue:       cfg.RabbitQueue,
		consumerTag: cfg.RabbitConsumerTag,
		endpoint:    cfg.DeliveryBaseURL + "/internal/notifications/deliver",
		workerKey:   cfg.WorkerKey,
		client:      &http.Client{Timeout: cfg.DeliveryTimeout},
		logger:      logger,
	}, nil
}

func (w *Worker) Start(ctx context.Context) error {
	conn, err := amqp.Dial(w.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("rabbitmq qos: %w", err)
	}

	queueInfo, err := ch.QueueDeclare(
		w.queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	deliveries, err := ch.Consume(
		queueInfo.Name,
		w.consumerTag,
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("rabbitmq consume: %w", err)
	}

	w.logger.Info("notification worker started",
		zap.String("queue", queueInfo.Name),
		zap.String("endpoint", w.endpoint),
	)

	for {
		select {
		case <-ctx.Done():
			// Deferred channel close runs after the in-flight ack completed.
			return ctx.Err()
		case msg, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq deliveries closed")
			}
			w.handleDelivery(ctx, msg)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, amqpHeaderCarrier(msg.Headers))
	ctx, span := otel.Tracer("rabbitmq").Start(ctx, "worker.forward_envelope")
	span.SetAttributes(
		attribute.String("messaging.system", "rabbitmq"),
		attribute.String("messaging.destination", w.queue),
	)
	defer span.End()

	if err := w.forward(ctx, msg.Body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		w.logger.Error("delivery failed, requeueing", zap.Error(err))
		metrics.WorkerDeliveries.WithLabelValues("requeue").Inc()
		if nackErr := msg.Nack(false, true); nackErr != nil {
			w.logger.Error("rabbitmq nack failed", zap.Error(nackErr))
		}
		return
	}

	metrics.WorkerDeliveries.WithLabelValues("ack").Inc()
	if ackErr := msg.Ack(false); ackErr != nil {
		w.logger.Error("rabbitmq ack failed", zap.Error(ackErr))
	}
}

func (w *Worker) forward(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build delivery request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Worker-Key", w.workerKey)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("delivery request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("delivery endpoint returned %d", resp.StatusCode)
	}
	return nil
}
