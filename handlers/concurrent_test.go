// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers_test

import (
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/class-pulse/models"
	"github.com/danielhkuo/class-pulse/testutil"
)

// TestConcurrentSubmissions verifies that a whole class submitting at once
// is counted exactly
func TestConcurrentSubmissions(t *testing.T) {
	s := newTestServer(t)
	snap := s.createPoll(testutil.UnderstandingCheck())

	numStudents := 60
	students := make([]map[string]string, numStudents)
	for i := range students {
		students[i] = testutil.ParticipantHeaders(t)
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numStudents; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			w := s.submit(snap.ID, students[idx], snap.Options[idx%len(snap.Options)])
			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if int(successCount.Load()) != numStudents {
		t.Errorf("Expected %d successful submissions, got %d", numStudents, successCount.Load())
	}

	var got models.PollSnapshot
	w := s.do("GET", "/polls/"+snap.ID, nil, nil)
	testutil.AssertJSON(t, w, &got)
	if got.TotalResponses != numStudents {
		t.Errorf("Expected %d responses, got %d", numStudents, got.TotalResponses)
	}
	for _, tl := range got.Tallies {
		if tl.Count != numStudents/len(snap.Options) {
			t.Errorf("%s: expected %d, got %d", tl.Option, numStudents/len(snap.Options), tl.Count)
		}
	}
}

// TestConcurrentDuplicateSubmissions verifies that a double-clicked submit
// button records one response and reports the rest as duplicates
func TestConcurrentDuplicateSubmissions(t *testing.T) {
	s := newTestServer(t)
	snap := s.createPoll(testutil.UnderstandingCheck())
	student := s.join()

	numAttempts := 20
	var created, conflicts atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := s.submit(snap.ID, student, "Yes")
			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("Expected exactly 1 accepted submission, got %d", created.Load())
	}
	if int(conflicts.Load()) != numAttempts-1 {
		t.Errorf("Expected %d duplicate rejections, got %d", numAttempts-1, conflicts.Load())
	}
}

// TestConcurrentCreateRequests verifies that two instructors racing to open
// a poll never both succeed
func TestConcurrentCreateRequests(t *testing.T) {
	s := newTestServer(t)

	numAttempts := 10
	var created, conflicts atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := s.do("POST", "/polls", testutil.UnderstandingCheck(), s.admin())
			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("Expected exactly 1 created poll, got %d", created.Load())
	}
	if int(conflicts.Load()) != numAttempts-1 {
		t.Errorf("Expected %d conflicts, got %d", numAttempts-1, conflicts.Load())
	}
}
