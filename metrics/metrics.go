// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/danielhkuo/class-pulse/poll"
)

// EngineMetrics implements poll.Recorder on top of Prometheus collectors.
// Nothing is labelled by participant.
type EngineMetrics struct {
	PollsCreated      prometheus.Counter
	PollsClosed       prometheus.Counter
	ClosedPollSize    prometheus.Histogram
	ResponsesAccepted prometheus.Counter
	ResponsesRejected *prometheus.CounterVec
	InsightsRaised    *prometheus.CounterVec
	SubmitLatency     prometheus.Histogram
}

// NewEngineMetrics registers the engine collectors with reg. Passing a
// fresh registry per test avoids duplicate registration panics.
func NewEngineMetrics(reg prometheus.Registerer, namespace string) *EngineMetrics {
	factory := promauto.With(reg)
	return &EngineMetrics{
		PollsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "polls_created_total",
			Help:      "Total number of polls opened",
		}),
		PollsClosed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "polls_closed_total",
			Help:      "Total number of polls closed",
		}),
		ClosedPollSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "closed_poll_responses",
			Help:      "Responses collected by each poll at close",
			Buckets:   prometheus.LinearBuckets(0, 10, 10),
		}),
		ResponsesAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "responses_accepted_total",
			Help:      "Total number of accepted responses",
		}),
		ResponsesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "responses_rejected_total",
			Help:      "Total number of rejected responses by error code",
		}, []string{"code"}),
		InsightsRaised: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "insights_raised_total",
			Help:      "Total number of insights raised by kind",
		}, []string{"kind"}),
		SubmitLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "submit_duration_seconds",
			Help:      "Histogram of submission handling times",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12), // 50µs to ~100ms
		}),
	}
}

var _ poll.Recorder = (*EngineMetrics)(nil)

func (m *EngineMetrics) PollCreated() { m.PollsCreated.Inc() }

func (m *EngineMetrics) PollClosed(totalResponses int) {
	m.PollsClosed.Inc()
	m.ClosedPollSize.Observe(float64(totalResponses))
}

func (m *EngineMetrics) ResponseAccepted() { m.ResponsesAccepted.Inc() }

func (m *EngineMetrics) ResponseRejected(code poll.Code) {
	m.ResponsesRejected.WithLabelValues(string(code)).Inc()
}

func (m *EngineMetrics) InsightRaised(kind string) {
	m.InsightsRaised.WithLabelValues(kind).Inc()
}

func (m *EngineMetrics) ObserveSubmit(d time.Duration) {
	m.SubmitLatency.Observe(d.Seconds())
}
