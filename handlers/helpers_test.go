// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/class-pulse/cliparse"
	"github.com/danielhkuo/class-pulse/models"
	"github.com/danielhkuo/class-pulse/poll"
	"github.com/danielhkuo/class-pulse/router"
	"github.com/danielhkuo/class-pulse/testutil"
)

type testServer struct {
	t       *testing.T
	cfg     cliparse.Config
	manager *poll.Manager
	mux     http.Handler
}

func newTestServer(t *testing.T, opts ...poll.Option) *testServer {
	t.Helper()
	cfg := testutil.GetTestConfig()
	m := poll.NewManager(opts...)
	return &testServer{t: t, cfg: cfg, manager: m, mux: router.NewRouter(router.Deps{Manager: m}, cfg)}
}

func (s *testServer) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, testutil.MakeRequest(method, path, body, headers))
	return w
}

func (s *testServer) admin() map[string]string {
	return testutil.AdminHeaders(s.cfg)
}

func (s *testServer) createPoll(def models.PollDefinition) models.PollSnapshot {
	s.t.Helper()
	w := s.do("POST", "/polls", def, s.admin())
	testutil.AssertStatus(s.t, w, http.StatusCreated)
	var snap models.PollSnapshot
	testutil.AssertJSON(s.t, w, &snap)
	return snap
}

// join issues a participant token through the API.
func (s *testServer) join() map[string]string {
	s.t.Helper()
	w := s.do("POST", "/participants", nil, nil)
	testutil.AssertStatus(s.t, w, http.StatusCreated)
	var resp models.JoinResponse
	testutil.AssertJSON(s.t, w, &resp)
	return map[string]string{"X-Participant-Token": resp.ParticipantToken}
}

func (s *testServer) submit(pollID string, headers map[string]string, option string) *httptest.ResponseRecorder {
	return s.do("POST", "/polls/"+pollID+"/responses", models.SubmitResponseRequest{Option: option}, headers)
}
