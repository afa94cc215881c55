package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Weather poller metrics
var (
	// PollCyclesTotal counts completed poll cycles by outcome
	PollCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mirror_weather_poll_cycles_total",
			Help: "Total number of weather poll cycles",
		},
		[]string{"source", "outcome"},
	)

	// PollFetchDuration tracks how long a fetch from the weather source takes
	PollFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mirror_weather_fetch_duration_seconds",
			Help:    "Duration of weather source fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// LastPublished is the unix time the view state was last written
	LastPublished = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mirror_weather_last_published_seconds",
			Help: "Unix timestamp of the last published weather snapshot",
		},
	)
)

// Widget metrics
var (
	// WidgetJobsTotal counts scheduled widget job runs
	WidgetJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mirror_widget_jobs_total",
			Help: "Total number of scheduled widget job runs",
		},
		[]string{"job", "status"},
	)

	// AppStartTime records when the application started
	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mirror_app_start_time_seconds",
			Help: "Unix timestamp of when the application started",
		},
	)
)

func init() {
	AppStartTime.SetToCurrentTime()
}

// Outcomes of a poll cycle.
const (
	OutcomeSnapshot = "snapshot"
	OutcomeNoData   = "no_data"
	OutcomeFailure  = "failure"
)

// RecordPoll records one poll cycle.
func RecordPoll(source, outcome string, duration time.Duration) {
	PollCyclesTotal.WithLabelValues(source, outcome).Inc()
	PollFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if outcome != OutcomeFailure {
		LastPublished.SetToCurrentTime()
	}
}

// RecordWidgetJob records a widget job execution.
func RecordWidgetJob(job string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	WidgetJobsTotal.WithLabelValues(job, status).Inc()
}
