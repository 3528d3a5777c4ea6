package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	CustomersRegisteredTotal prometheus.Counter
	LoansCreatedTotal        prometheus.Counter
	EligibilityDecisions     *prometheus.CounterVec
	CreditScoreDistribution  prometheus.Histogram
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credit_engine_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		CustomersRegisteredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_engine_customers_registered_total",
				Help: "Total number of customers successfully registered.",
			},
		),
		LoansCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_engine_loans_created_total",
				Help: "Total number of loans successfully created.",
			},
		),
		EligibilityDecisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_engine_eligibility_decisions_total",
				Help: "Eligibility evaluations partitioned by outcome.",
			},
			[]string{"decision"},
		),
		CreditScoreDistribution: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "credit_engine_credit_score",
				Help:    "Distribution of computed credit scores.",
				Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordCustomerRegistered() {
	Business.CustomersRegisteredTotal.Inc()
}

func RecordLoanCreated() {
	Business.LoansCreatedTotal.Inc()
}

func RecordEligibilityDecision(approved bool, score int) {
	decision := "rejected"
	if approved {
		decision = "approved"
	}
	Business.EligibilityDecisions.WithLabelValues(decision).Inc()
	Business.CreditScoreDistribution.Observe(float64(score))
}
