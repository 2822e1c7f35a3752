package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	PaymentsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firm_payments_recorded_total",
			Help: "Payments recorded against invoices by outcome",
		},
		[]string{"outcome"}, // applied, replayed, rejected
	)
	LeadsConverted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "firm_leads_converted_total",
			Help: "Total number of leads converted to customers",
		},
	)
	StoreCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "firm_store_call_duration_seconds",
			Help:    "Duration of store calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		[]string{"op", "kind"},
	)
	StoreRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firm_store_retries_total",
			Help: "Store calls retried after a timeout",
		},
		[]string{"op"},
	)
	SweeperRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firm_overdue_sweeps_total",
			Help: "Overdue invoice sweeps by status",
		},
		[]string{"status"},
	)
	InvoicesMarkedOverdue = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "firm_invoices_marked_overdue_total",
			Help: "Invoices moved to overdue by the sweeper",
		},
	)
)

func InitMetrics() {
	for name, c := range map[string]prometheus.Collector{
		"PaymentsRecorded":      PaymentsRecorded,
		"LeadsConverted":        LeadsConverted,
		"StoreCallDuration":     StoreCallDuration,
		"StoreRetries":          StoreRetries,
		"SweeperRuns":           SweeperRuns,
		"InvoicesMarkedOverdue": InvoicesMarkedOverdue,
	} {
		if err := prometheus.Register(c); err != nil {
			log.Error().Err(err).Msgf("Failed to register %s metric", name)
		}
	}
}
