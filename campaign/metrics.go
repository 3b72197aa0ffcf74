package campaign

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusSent    = "sent"
	statusFailed  = "failed"
	statusSkipped = "skipped"
)

var (
	emailsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encourager_emails_total",
			Help: "Recipients processed by outcome",
		},
		[]string{"status"},
	)

	recipientDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "encourager_recipient_duration_seconds",
			Help:    "Time spent on one recipient, image and generation included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(emailsTotal)
	prometheus.MustRegister(recipientDuration)
}

func recordRecipient(status string, seconds float64) {
	emailsTotal.WithLabelValues(status).Inc()
	if status != statusSkipped {
		recipientDuration.WithLabelValues(status).Observe(seconds)
	}
}
