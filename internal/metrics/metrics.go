// Package metrics defines the Prometheus collectors exported by the service.
//
// All recording methods are safe to call on a nil *Metrics, so components can
// be constructed without instrumentation in tests.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "docqa"

// Metrics groups the service collectors.
type Metrics struct {
	QuestionsSubmitted prometheus.Counter
	DispatchFailures   prometheus.Counter
	AnswerOutcomes     *prometheus.CounterVec
	AnswerDuration     prometheus.Histogram
	TasksProcessed     *prometheus.CounterVec
	TasksRecovered     prometheus.Counter
	RateLimitRejected  *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// New creates the collectors. They are not registered until RegisterCollectors is called.
func New() *Metrics {
	return &Metrics{
		QuestionsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Name: "questions_submitted_total",
			Help: "Number of questions accepted and persisted.",
		}),
		DispatchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Name: "answer_dispatch_failures_total",
			Help: "Number of committed questions whose answer task could not be dispatched.",
		}),
		AnswerOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Name: "answer_outcomes_total",
			Help: "Answer generation runs by outcome.",
		}, []string{"outcome"}),
		AnswerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace, Name: "answer_generation_seconds",
			Help:    "Wall time of answer generation runs, including the simulated delay.",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 7.5, 10, 30},
		}),
		TasksProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Name: "tasks_processed_total",
			Help: "Background tasks processed by type and final journal status.",
		}, []string{"type", "status"}),
		TasksRecovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Name: "tasks_recovered_total",
			Help: "Tasks re-queued from the durable journal.",
		}),
		RateLimitRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Name: "rate_limit_rejected_total",
			Help: "Number of requests rejected by the rate limiter.",
		}, []string{"route"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// RegisterCollectors registers every collector with reg.
func (m *Metrics) RegisterCollectors(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.QuestionsSubmitted,
		m.DispatchFailures,
		m.AnswerOutcomes,
		m.AnswerDuration,
		m.TasksProcessed,
		m.TasksRecovered,
		m.RateLimitRejected,
		m.HTTPRequests,
		m.HTTPDuration,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RegisterQueueDepth exposes the current queue length through fn.
func RegisterQueueDepth(reg prometheus.Registerer, fn func() int) error {
	return reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: Namespace, Name: "task_queue_depth",
		Help: "Submitted tasks not yet picked up by a worker.",
	}, func() float64 { return float64(fn()) }))
}

// QuestionSubmitted records an accepted question.
func (m *Metrics) QuestionSubmitted() {
	if m == nil {
		return
	}
	m.QuestionsSubmitted.Inc()
}

// DispatchFailed records a task that could not be handed to the runner.
func (m *Metrics) DispatchFailed() {
	if m == nil {
		return
	}
	m.DispatchFailures.Inc()
}

// AnswerOutcome records one generation run.
func (m *Metrics) AnswerOutcome(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.AnswerOutcomes.WithLabelValues(outcome).Inc()
	m.AnswerDuration.Observe(elapsed.Seconds())
}

// TaskProcessed records the final journal status of a task.
func (m *Metrics) TaskProcessed(taskType, status string) {
	if m == nil {
		return
	}
	m.TasksProcessed.WithLabelValues(taskType, status).Inc()
}

// TaskRecovered records a task re-queued from the journal.
func (m *Metrics) TaskRecovered() {
	if m == nil {
		return
	}
	m.TasksRecovered.Inc()
}

// RateLimited records a rejected request.
func (m *Metrics) RateLimited(route string) {
	if m == nil {
		return
	}
	m.RateLimitRejected.WithLabelValues(route).Inc()
}

// HTTPRequest records one served request.
func (m *Metrics) HTTPRequest(method, route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
