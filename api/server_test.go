package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"rpp_scraper/models"
)

type fakeSearcher struct {
	gotAddress  string
	gotDeadline bool
	result      *models.SearchResult
}

func (f *fakeSearcher) SearchProperty(ctx context.Context, address string) *models.SearchResult {
	f.gotAddress = address
	_, f.gotDeadline = ctx.Deadline()
	return f.result
}

type fakeSessions struct {
	sessions []models.ScrapeSession
	logs     []models.SessionLog
}

func (f *fakeSessions) RecentSessions(ctx context.Context, limit int) ([]models.ScrapeSession, error) {
	return f.sessions, nil
}

func (f *fakeSessions) SessionLogs(ctx context.Context, sessionID uuid.UUID) ([]models.SessionLog, error) {
	return f.logs, nil
}

func newTestServer(searcher Searcher, sessions SessionReader) *Server {
	return NewServer(":0", 10*time.Minute, searcher, sessions, nil)
}

func TestScrapePropertyReturnsEnvelope(t *testing.T) {
	searcher := &fakeSearcher{result: &models.SearchResult{
		Success: true,
		Message: "Property data loaded from database",
		Data:    &models.PropertyRecord{ID: 7, Address: "200 George Street Sydney NSW 2000"},
	}}
	server := newTestServer(searcher, nil)

	req := httptest.NewRequest("POST", "/scrape-property",
		strings.NewReader(`{"address":"200 George Street Sydney NSW 2000"}`))
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if searcher.gotAddress != "200 George Street Sydney NSW 2000" {
		t.Fatalf("address not passed through: %q", searcher.gotAddress)
	}

	var result models.SearchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !result.Success || result.Data == nil || result.Data.ID != 7 {
		t.Fatalf("unexpected envelope: %+v", result)
	}
}

func TestScrapePropertyFailureStillHTTP200(t *testing.T) {
	searcher := &fakeSearcher{result: &models.SearchResult{
		Success: false,
		Message: "Please write complete and accurate address",
	}}
	server := newTestServer(searcher, nil)

	req := httptest.NewRequest("POST", "/scrape-property", strings.NewReader(`{"address":"George"}`))
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("search failures ride the envelope, expected 200 got %d", rec.Code)
	}

	var result models.SearchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Success || result.Message != "Please write complete and accurate address" {
		t.Fatalf("unexpected envelope: %+v", result)
	}
}

func TestScrapePropertyMissingAddressRejected(t *testing.T) {
	searcher := &fakeSearcher{result: &models.SearchResult{Success: true}}
	server := newTestServer(searcher, nil)

	for _, body := range []string{`{}`, `{"address":"  "}`, `not json`} {
		req := httptest.NewRequest("POST", "/scrape-property", strings.NewReader(body))
		rec := httptest.NewRecorder()
		server.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
	if searcher.gotAddress != "" {
		t.Fatalf("searcher should not run on rejected requests")
	}
}

func TestHomeDescribesAPI(t *testing.T) {
	server := newTestServer(&fakeSearcher{}, nil)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var info map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if info["message"] == "" || info["endpoints"] == nil {
		t.Fatalf("home payload incomplete: %v", info)
	}
}

func TestSessionsEndpoint(t *testing.T) {
	sessions := &fakeSessions{sessions: []models.ScrapeSession{
		{ID: uuid.New(), Address: "1 Test Street", Outcome: models.OutcomeSuccess},
	}}
	server := newTestServer(&fakeSearcher{}, sessions)

	req := httptest.NewRequest("GET", "/sessions", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var listed []models.ScrapeSession
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(listed) != 1 || listed[0].Address != "1 Test Street" {
		t.Fatalf("unexpected sessions: %+v", listed)
	}
}

func TestSessionLogsRejectsBadID(t *testing.T) {
	server := newTestServer(&fakeSearcher{}, &fakeSessions{})

	req := httptest.NewRequest("GET", "/sessions/not-a-uuid/logs", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad uuid, got %d", rec.Code)
	}
}

func TestScrapePropertyBoundedBySessionTimeout(t *testing.T) {
	searcher := &fakeSearcher{result: &models.SearchResult{Success: true}}
	server := newTestServer(searcher, nil)

	req := httptest.NewRequest("POST", "/scrape-property", strings.NewReader(`{"address":"1 Test Street"}`))
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	if !searcher.gotDeadline {
		t.Fatalf("search context should carry the session-timeout deadline")
	}
}
