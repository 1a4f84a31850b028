package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classlive_notifications_dispatched_total",
		Help: "Envelopes published to the notification queue.",
	})

	NotificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classlive_notifications_dropped_total",
		Help: "Envelopes dropped because no broker is configured.",
	})

	NotificationsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classlive_notifications_delivered_total",
		Help: "Per-recipient notification records persisted by fanout.",
	})

	NotificationsPushed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classlive_notifications_pushed_total",
		Help: "Push events sent to private user channels.",
	})

	WorkerDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classlive_worker_deliveries_total",
		Help: "Worker delivery attempts by outcome (ack or requeue).",
	}, []string{"outcome"})

	SignalingConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "classlive_signaling_connections",
		Help: "Open signaling connections.",
	})

	SignalingParticipants = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "classlive_signaling_participants",
		Help: "Connections currently joined to a meeting room.",
	})
)
