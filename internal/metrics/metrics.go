package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "reserbio",
			Name:      "reservations_created_total",
			Help:      "Count of reservations accepted by the booking engine.",
		},
	)

	reservationsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reserbio",
			Name:      "reservations_rejected_total",
			Help:      "Count of booking rejections by rule.",
		},
		[]string{"reason"},
	)

	reservationsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "reserbio",
			Name:      "reservations_expired_total",
			Help:      "Count of active reservations auto-finalized by the expiry sweep.",
		},
	)

	notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reserbio",
			Name:      "notifications_sent_total",
			Help:      "Count of push notification deliveries by result.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(reservationsCreated, reservationsRejected, reservationsExpired, notificationsSent)
	})
}

func IncReservationCreated() {
	reservationsCreated.Inc()
}

func IncReservationRejected(reason string) {
	reservationsRejected.WithLabelValues(reason).Inc()
}

func AddReservationsExpired(n int) {
	reservationsExpired.Add(float64(n))
}

func IncNotificationSent(result string) {
	notificationsSent.WithLabelValues(result).Inc()
}
