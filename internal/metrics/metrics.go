package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parrot_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parrot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AnswersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parrot_answers_total",
			Help: "Total number of answer requests by outcome.",
		},
		[]string{"outcome"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parrot_answer_stage_duration_seconds",
			Help:    "Latency of each answer pipeline stage (embed, search, complete).",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)

	IngestFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parrot_ingest_files_total",
			Help: "Total number of files handled by the ingestion loops.",
		},
		[]string{"loop", "outcome"},
	)

	RecordsInsertedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parrot_records_inserted_total",
			Help: "Total number of memory records written to the vector store.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		AnswersTotal,
		StageDuration,
		IngestFilesTotal,
		RecordsInsertedTotal,
	)
}
