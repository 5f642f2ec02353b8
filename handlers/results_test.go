// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/class-pulse/models"
	"github.com/danielhkuo/class-pulse/poll"
	"github.com/danielhkuo/class-pulse/testutil"
)

func TestGetActivePoll(t *testing.T) {
	s := newTestServer(t)

	var resp models.ActivePollResponse
	w := s.do("GET", "/polls/active", nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &resp)
	if resp.Poll != nil {
		t.Fatalf("Expected no active poll, got %+v", resp.Poll)
	}

	snap := s.createPoll(testutil.UnderstandingCheck())
	s.submit(snap.ID, s.join(), "Yes")

	w = s.do("GET", "/polls/active", nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &resp)
	if resp.Poll == nil || resp.Poll.ID != snap.ID || resp.Poll.TotalResponses != 1 {
		t.Errorf("Expected active poll %s with 1 response, got %+v", snap.ID, resp.Poll)
	}
}

func TestGetPoll(t *testing.T) {
	s := newTestServer(t)
	snap := s.createPoll(testutil.UnderstandingCheck())

	w := s.do("GET", "/polls/"+snap.ID, nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var got models.PollSnapshot
	testutil.AssertJSON(t, w, &got)
	if got.ID != snap.ID || got.Question != snap.Question {
		t.Errorf("Expected poll %s, got %+v", snap.ID, got)
	}

	w = s.do("GET", "/polls/unknown", nil, nil)
	testutil.AssertErrorCode(t, w, http.StatusNotFound, "NOT_FOUND")
}

func TestSnapshotsNeverExposeTokens(t *testing.T) {
	s := newTestServer(t)
	snap := s.createPoll(testutil.UnderstandingCheck())
	student := s.join()
	token := student["X-Participant-Token"]

	for _, body := range []interface{ String() string }{
		s.submit(snap.ID, student, "Yes").Body,
		s.do("GET", "/polls/"+snap.ID, nil, nil).Body,
		s.do("POST", "/polls/"+snap.ID+"/close", nil, s.admin()).Body,
		s.do("GET", "/polls/history", nil, nil).Body,
	} {
		if strings.Contains(body.String(), token) {
			t.Errorf("Response leaked participant token: %s", body.String())
		}
	}
}

func TestGetHistory(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	s := newTestServer(t, poll.WithClock(clock))

	for i := 0; i < 5; i++ {
		def := testutil.UnderstandingCheck()
		def.Question = fmt.Sprintf("Question %d", i)
		snap := s.createPoll(def)
		for j := 0; j <= i; j++ {
			s.submit(snap.ID, s.join(), "Yes")
		}
		testutil.AssertStatus(t, s.do("POST", "/polls/"+snap.ID+"/close", nil, s.admin()), http.StatusOK)
	}

	t.Run("default limit", func(t *testing.T) {
		var resp models.HistoryResponse
		w := s.do("GET", "/polls/history", nil, nil)
		testutil.AssertStatus(t, w, http.StatusOK)
		testutil.AssertJSON(t, w, &resp)

		if len(resp.Polls) != 3 {
			t.Fatalf("Expected 3 recent polls, got %d", len(resp.Polls))
		}
		// Most recently closed first
		if resp.Polls[0].Poll.Question != "Question 4" || resp.Polls[2].Poll.Question != "Question 2" {
			t.Errorf("Unexpected order: %s ... %s", resp.Polls[0].Poll.Question, resp.Polls[2].Poll.Question)
		}
		if !strings.HasPrefix(resp.Polls[0].Summary, "5 responses • ") {
			t.Errorf("Unexpected summary %q", resp.Polls[0].Summary)
		}
	})

	t.Run("explicit limit", func(t *testing.T) {
		var resp models.HistoryResponse
		w := s.do("GET", "/polls/history?limit=10", nil, nil)
		testutil.AssertStatus(t, w, http.StatusOK)
		testutil.AssertJSON(t, w, &resp)
		if len(resp.Polls) != 5 {
			t.Errorf("Expected 5 polls, got %d", len(resp.Polls))
		}
		if !strings.HasPrefix(resp.Polls[4].Summary, "1 response • ") {
			t.Errorf("Unexpected singular summary %q", resp.Polls[4].Summary)
		}
	})

	t.Run("zero means all", func(t *testing.T) {
		var resp models.HistoryResponse
		w := s.do("GET", "/polls/history?limit=0", nil, nil)
		testutil.AssertJSON(t, w, &resp)
		if len(resp.Polls) != 5 {
			t.Errorf("Expected 5 polls, got %d", len(resp.Polls))
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		for _, q := range []string{"abc", "-1"} {
			w := s.do("GET", "/polls/history?limit="+q, nil, nil)
			testutil.AssertErrorCode(t, w, http.StatusBadRequest, "BAD_REQUEST")
		}
	})

	t.Run("closed polls stay readable", func(t *testing.T) {
		history := s.manager.History(1)
		w := s.do("GET", "/polls/"+history[0].ID, nil, nil)
		testutil.AssertStatus(t, w, http.StatusOK)
		var got models.PollSnapshot
		testutil.AssertJSON(t, w, &got)
		if got.Status != models.StatusClosed {
			t.Errorf("Expected closed status, got %s", got.Status)
		}
	})
}
