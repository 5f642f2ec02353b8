// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/danielhkuo/class-pulse/models"
	"github.com/danielhkuo/class-pulse/poll"
)

func TestEngineMetricsRecordsManagerActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEngineMetrics(reg, "classpulse")
	mgr := poll.NewManager(poll.WithRecorder(m))
	ctx := context.Background()

	snap, err := mgr.CreatePoll(ctx, models.PollDefinition{
		Question:  "Do you understand?",
		Options:   []string{"Yes", "Partially", "No"},
		Kind:      models.KindUnderstandingCheck,
		ClassSize: 10,
	})
	if err != nil {
		t.Fatal(err)
	}

	mgr.Submit(ctx, snap.ID, "a", "No")
	mgr.Submit(ctx, snap.ID, "a", "Yes")
	mgr.Submit(ctx, snap.ID, "b", "Maybe")
	mgr.Submit(ctx, "missing", "c", "Yes")
	mgr.ClosePoll(ctx, snap.ID)

	if got := testutil.ToFloat64(m.PollsCreated); got != 1 {
		t.Errorf("Expected 1 poll created, got %v", got)
	}
	if got := testutil.ToFloat64(m.PollsClosed); got != 1 {
		t.Errorf("Expected 1 poll closed, got %v", got)
	}
	if got := testutil.ToFloat64(m.ResponsesAccepted); got != 1 {
		t.Errorf("Expected 1 accepted response, got %v", got)
	}
	for code, want := range map[poll.Code]float64{
		poll.CodeDuplicateSubmission: 1,
		poll.CodeInvalidOption:       1,
		poll.CodeNotFound:            1,
	} {
		if got := testutil.ToFloat64(m.ResponsesRejected.WithLabelValues(string(code))); got != want {
			t.Errorf("%s: expected %v rejections, got %v", code, want, got)
		}
	}
	if got := testutil.ToFloat64(m.InsightsRaised.WithLabelValues(models.InsightNeedsClarification)); got != 1 {
		t.Errorf("Expected 1 NeedsClarification insight, got %v", got)
	}
	if got := testutil.CollectAndCount(m.SubmitLatency); got != 1 {
		t.Errorf("Expected submit latency histogram to be collected, got %d", got)
	}
}

func TestNewEngineMetricsRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEngineMetrics(reg, "classpulse")
	m.PollCreated()
	m.ResponseRejected(poll.CodePollClosed)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"classpulse_engine_polls_created_total",
		"classpulse_engine_responses_rejected_total",
	} {
		if !names[want] {
			t.Errorf("Expected metric %s to be registered", want)
		}
	}
}
