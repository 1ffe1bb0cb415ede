package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	SyncBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_batches_total",
			Help: "Total number of sync batches received.",
		},
		[]string{"service"},
	)

	SyncEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_events_total",
			Help: "Total number of sync events by outcome.",
		},
		[]string{"service", "result"},
	)

	EventAnomaliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_anomalies_total",
			Help: "Total number of anomaly flags raised during classification.",
		},
		[]string{"service", "kind"},
	)

	ChecklistsMaterializedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checklists_materialized_total",
			Help: "Total number of checklist instances created from templates.",
		},
		[]string{"service"},
	)

	ChecklistsCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checklists_completed_total",
			Help: "Total number of checklists that transitioned to COMPLETED.",
		},
		[]string{"service"},
	)
)

func MustRegister(serviceName string) {
	HTTPRequestsTotal = HTTPRequestsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	HTTPRequestDurationSeconds = HTTPRequestDurationSeconds.MustCurryWith(prometheus.Labels{"service": serviceName}).(*prometheus.HistogramVec)
	SyncBatchesTotal = SyncBatchesTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	SyncEventsTotal = SyncEventsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	EventAnomaliesTotal = EventAnomaliesTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	ChecklistsMaterializedTotal = ChecklistsMaterializedTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	ChecklistsCompletedTotal = ChecklistsCompletedTotal.MustCurryWith(prometheus.Labels{"service": serviceName})

	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		SyncBatchesTotal,
		SyncEventsTotal,
		EventAnomaliesTotal,
		ChecklistsMaterializedTotal,
		ChecklistsCompletedTotal,
	)
}
