package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"classlive/internal/metrics"
	"classlive/internal/model"
	"classlive/internal/queue"
)

// Dispatcher turns a domain event into an envelope on the durable queue.
// Callers must not treat a dispatch failure as a domain-operation failure;
// with no broker configured the publisher is a documented no-op and the
// notification is dropped, not queued.
type Dispatcher struct {
	pub queue.Publisher
	log *zap.Logger
}

func NewDispatcher(publisher queue.Publisher, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{pub: publisher, log: logger}
}

func (d *Dispatcher) Dispatch(ctx context.Context, envelope model.Envelope) error {
	recipients := dedupe(envelope.UserIDs)
	if len(recipients) == 0 {
		return nil
	}
	envelope.UserIDs = recipients

	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	if err := d.pub.Publish(ctx, payload); err != nil {
		d.log.Error("dispatch publish failed",
			zap.String("type", envelope.Type),
			zap.Int("recipients", len(recipients)),
			zap.Error(err),
		)
		return err
	}
	metrics.NotificationsDispatched.Inc()
	return nil
}

// dedupe preserves first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
