// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/class-pulse/auth"
	"github.com/danielhkuo/class-pulse/cliparse"
	"github.com/danielhkuo/class-pulse/db"
	"github.com/danielhkuo/class-pulse/models"
	"github.com/danielhkuo/class-pulse/poll"
)

// SetupTestDB creates a fresh sqlite archive with the full schema
func SetupTestDB(t *testing.T) (*sql.DB, *db.Store) {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Open(ctx, db.DialectSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(ctx, conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn, db.NewStore(conn, db.DialectSQLite)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                   3318,
		DatabaseURL:            "file::memory:",
		DatabaseType:           db.DialectSQLite,
		AdminKeySalt:           "test-admin-salt",
		SessionID:              "test-classroom",
		DefaultClassSize:       28,
		HistoryLoadLimit:       50,
		ClarificationThreshold: poll.DefaultClarificationThreshold,
		MisconceptionThreshold: poll.DefaultMisconceptionThreshold,
		ArchiveTimeout:         time.Second,
		NotifyTimeout:          time.Second,
		NotifyBuffer:           64,
	}
}

// AdminHeaders returns the instructor key header for cfg's session
func AdminHeaders(cfg cliparse.Config) map[string]string {
	return map[string]string{"X-Admin-Key": auth.GenerateAdminKey(cfg.SessionID, cfg.AdminKeySalt)}
}

// ParticipantHeaders returns a header set carrying a freshly issued token
func ParticipantHeaders(t *testing.T) map[string]string {
	t.Helper()
	token, err := auth.GenerateParticipantToken()
	if err != nil {
		t.Fatalf("Failed to generate participant token: %v", err)
	}
	return map[string]string{"X-Participant-Token": token}
}

// UnderstandingCheck is the dashboard's default poll
func UnderstandingCheck() models.PollDefinition {
	return models.PollDefinition{
		Question:  "Do you understand the concept we just covered?",
		Options:   []string{"Yes", "Partially", "No", "Not sure"},
		Kind:      models.KindUnderstandingCheck,
		ClassSize: 28,
	}
}

// CreateTestPoll opens a poll directly on the manager
func CreateTestPoll(t *testing.T, m *poll.Manager, def models.PollDefinition) models.PollSnapshot {
	t.Helper()
	snap, err := m.CreatePoll(context.Background(), def)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return snap
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertErrorCode checks status and the machine-readable error code
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	AssertStatus(t, w, status)
	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Code != code {
		t.Errorf("Expected error code %s, got %s (%s)", code, resp.Code, resp.Message)
	}
}
