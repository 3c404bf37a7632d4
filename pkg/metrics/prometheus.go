package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	PassLookups       *prometheus.CounterVec
	DuplicatesDeleted prometheus.Counter
	PassesRenewed     prometheus.Counter
	PassesPurchased   prometheus.Counter
	BenefitsUsed      *prometheus.CounterVec
	RemindersSent     *prometheus.CounterVec
	OperationTime     *prometheus.HistogramVec
	ErrorsCount       *prometheus.CounterVec
}

// NewMetrics creates pass metrics registered on reg.
// A nil reg registers on the default prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		PassLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pass_lookups_total",
			Help:      "Pass lookups by outcome (active, expired, cancelled, not_found, error)",
		}, []string{"outcome"}),
		DuplicatesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pass_duplicates_deleted_total",
			Help:      "The total number of superseded pass documents deleted by cleanup",
		}),
		PassesRenewed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_renewed_total",
			Help:      "The total number of pass renewals",
		}),
		PassesPurchased: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_purchased_total",
			Help:      "The total number of passes issued by purchase",
		}),
		BenefitsUsed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pass_benefits_used_total",
			Help:      "Consumed pass benefits by kind",
		}, []string{"kind"}),
		RemindersSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pass_reminders_total",
			Help:      "Expiry reminders by channel and result",
		}, []string{"channel", "result"}),
		OperationTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_operation_duration_seconds",
			Help:      "Time taken by pass operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
