package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

type LedgerMetrics struct {
	AccountsOpenedTotal prometheus.Counter
	AccountsClosedTotal prometheus.Counter
	AccountsRegistered  prometheus.Gauge
	OperationsTotal     *prometheus.CounterVec
	RejectedTotal       *prometheus.CounterVec
}

var (
	HTTP = HTTPMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "account_ledger_http_requests_total",
				Help: "Total number of HTTP requests received.",
			},
			[]string{"method", "path", "code"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "account_ledger_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "code"},
		),
	}

	Ledger = LedgerMetrics{
		AccountsOpenedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "account_ledger_accounts_opened_total",
				Help: "Total number of accounts successfully opened.",
			},
		),
		AccountsClosedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "account_ledger_accounts_closed_total",
				Help: "Total number of accounts closed.",
			},
		),
		AccountsRegistered: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "account_ledger_accounts_registered",
				Help: "Number of accounts currently registered.",
			},
		),
		OperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "account_ledger_operations_total",
				Help: "Total number of statement operations appended, by type.",
			},
			[]string{"type"},
		),
		RejectedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "account_ledger_operations_rejected_total",
				Help: "Total number of rejected deposits and withdrawals, by reason.",
			},
			[]string{"reason"},
		),
	}
)

func RecordHTTPRequest(method, path, code string, duration time.Duration) {
	HTTP.RequestsTotal.WithLabelValues(method, path, code).Inc()
	HTTP.RequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

func RecordAccountOpened(registered int) {
	Ledger.AccountsOpenedTotal.Inc()
	Ledger.AccountsRegistered.Set(float64(registered))
}

func RecordAccountClosed(registered int) {
	Ledger.AccountsClosedTotal.Inc()
	Ledger.AccountsRegistered.Set(float64(registered))
}

func RecordOperation(opType string) {
	Ledger.OperationsTotal.WithLabelValues(opType).Inc()
}

func RecordRejected(reason string) {
	Ledger.RejectedTotal.WithLabelValues(reason).Inc()
}
