package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ModerationVerdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "moderation_verdicts_total", Help: "Moderation gate outcomes"},
		[]string{"verdict"},
	)
	NotificationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "notifications_created_total", Help: "Durable notification records written"},
		[]string{"type"},
	)
	OutboxPublishes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "outbox_publishes_total", Help: "Realtime push hint publish attempts"},
		[]string{"result"},
	)
	ThreadsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "threads_deleted_total", Help: "Thread records removed by cascade deletion"},
	)
)

func MustRegister() {
	prometheus.MustRegister(ModerationVerdicts, NotificationsCreated, OutboxPublishes, ThreadsDeleted)
}
