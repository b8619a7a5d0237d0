package scraper

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"rpp_scraper/config"
	"rpp_scraper/models"
	"rpp_scraper/services"
)

type fakeDriver struct {
	navigateErr error
	suggestions []string
	submitErr   error
	ambiguous   bool
	raw         models.RawRecord
	extractErr  error
	closed      bool
}

func (d *fakeDriver) NavigateTo(ctx context.Context, url string) error { return d.navigateErr }

func (d *fakeDriver) SubmitAddress(ctx context.Context, address string) ([]string, error) {
	return d.suggestions, d.submitErr
}

func (d *fakeDriver) SelectSuggestion(ctx context.Context, index int) error { return nil }

func (d *fakeDriver) WaitForResultsReady(ctx context.Context) (bool, error) { return true, nil }

func (d *fakeDriver) DetectAmbiguousResult(ctx context.Context) (bool, error) {
	return d.ambiguous, nil
}

func (d *fakeDriver) ExtractRawFields(ctx context.Context) (models.RawRecord, error) {
	return d.raw, d.extractErr
}

func (d *fakeDriver) CurrentURL() string { return "https://rpp.corelogic.com.au/property/1" }

func (d *fakeDriver) Close() error {
	d.closed = true
	return nil
}

type fakeStore struct {
	similar     *models.MatchCandidate
	fragments   models.RawRecord
	writes      int
	writtenRaw  models.RawRecord
	writeErr    error
	readBackRaw models.RawRecord
	nextID      int64
}

func (s *fakeStore) QueryMostSimilar(ctx context.Context, address string) (*models.MatchCandidate, error) {
	return s.similar, nil
}

func (s *fakeStore) ListAddresses(ctx context.Context) ([]models.MatchCandidate, error) {
	return nil, nil
}

func (s *fakeStore) ReadFragments(ctx context.Context, propertyID int64) (models.RawRecord, error) {
	if s.fragments == nil {
		return nil, errors.New("no fragments")
	}
	return s.fragments, nil
}

func (s *fakeStore) WriteRecord(ctx context.Context, raw models.RawRecord) (int64, error) {
	s.writes++
	s.writtenRaw = raw
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	return s.nextID, nil
}

func (s *fakeStore) ReadBack(ctx context.Context, propertyID int64) (models.RawRecord, error) {
	if s.readBackRaw != nil {
		return s.readBackRaw, nil
	}
	return s.writtenRaw, nil
}

type fakeJournal struct {
	created  int
	finished *models.ScrapeSession
	logs     []string
}

func (j *fakeJournal) CreateSession(ctx context.Context, session *models.ScrapeSession) error {
	j.created++
	return nil
}

func (j *fakeJournal) FinishSession(ctx context.Context, session *models.ScrapeSession) error {
	j.finished = session
	return nil
}

func (j *fakeJournal) AppendLog(ctx context.Context, sessionID uuid.UUID, level models.LogLevel, message string) error {
	j.logs = append(j.logs, message)
	return nil
}

func testConfig() config.ScrapeConfig {
	return config.ScrapeConfig{MaxAttempts: 3, BackoffBase: 2 * time.Second}
}

func newTestController(store *fakeStore, factory DriverFactory, journal Journal) (*SessionController, *[]time.Duration) {
	matcher := services.NewMatchService(store, 0.85, 0.90)
	ctl := NewSessionController(testConfig(), "https://rpp.corelogic.com.au/", factory, store, matcher, journal)
	slept := &[]time.Duration{}
	ctl.sleep = func(d time.Duration) { *slept = append(*slept, d) }
	return ctl, slept
}

func TestSearchLowSuggestionSimilarityNoRetries(t *testing.T) {
	store := &fakeStore{nextID: 1}
	drivers := 0
	drv := &fakeDriver{suggestions: []string{"99 Completely Different Road Brisbane QLD 4000"}}
	factory := func() (Driver, error) {
		drivers++
		return drv, nil
	}
	journal := &fakeJournal{}
	ctl, slept := newTestController(store, factory, journal)

	result := ctl.SearchProperty(context.Background(), "200 George Street Sydney NSW 2000")

	if result.Success {
		t.Fatalf("expected failure for low suggestion similarity")
	}
	if !strings.Contains(result.Message, "similarity") {
		t.Fatalf("message should explain the similarity rejection: %q", result.Message)
	}
	if drivers != 1 {
		t.Fatalf("low-similarity rejection must not retry, got %d driver sessions", drivers)
	}
	if len(*slept) != 0 {
		t.Fatalf("no backoff should elapse, got %d sleeps", len(*slept))
	}
	if !drv.closed {
		t.Fatalf("driver must be closed on the rejection path")
	}
	if store.writes != 0 {
		t.Fatalf("nothing should be written, got %d writes", store.writes)
	}
	if journal.finished == nil || journal.finished.Outcome != models.OutcomeAddressNotFound {
		t.Fatalf("expected address_not_found outcome, got %+v", journal.finished)
	}
}

func TestSearchCacheHitSkipsBrowser(t *testing.T) {
	store := &fakeStore{
		similar: &models.MatchCandidate{
			ID:      5,
			URL:     "https://rpp.corelogic.com.au/property/5",
			Address: "200 george st sydney nsw 2000",
		},
		fragments: models.RawRecord{
			models.RawAddress:     "200 George St Sydney NSW 2000",
			models.RawPropertyURL: "https://rpp.corelogic.com.au/property/5",
		},
	}
	factory := func() (Driver, error) {
		t.Fatalf("cache hit must not open a browser")
		return nil, nil
	}
	journal := &fakeJournal{}
	ctl, _ := newTestController(store, factory, journal)

	result := ctl.SearchProperty(context.Background(), "200 George Street Sydney NSW 2000")

	if !result.Success {
		t.Fatalf("expected cache-hit success, got %q", result.Message)
	}
	if result.Message != "Property data loaded from database" {
		t.Fatalf("unexpected message: %q", result.Message)
	}
	if result.Data == nil || result.Data.ID != 5 {
		t.Fatalf("expected record with id 5, got %+v", result.Data)
	}
	if journal.finished == nil || !journal.finished.CacheHit {
		t.Fatalf("session should record the cache hit")
	}
}

func TestSearchRetriesThenSucceeds(t *testing.T) {
	store := &fakeStore{nextID: 9}
	attempt := 0
	var created []*fakeDriver
	factory := func() (Driver, error) {
		attempt++
		drv := &fakeDriver{
			suggestions: []string{"200 George Street Sydney NSW 2000"},
			raw: models.RawRecord{
				models.RawAddress:     "200 George Street Sydney NSW 2000",
				models.RawPropertyURL: "https://rpp.corelogic.com.au/property/9",
			},
		}
		if attempt <= 2 {
			drv.navigateErr = errors.New("browser timeout")
		}
		created = append(created, drv)
		return drv, nil
	}
	journal := &fakeJournal{}
	ctl, slept := newTestController(store, factory, journal)

	result := ctl.SearchProperty(context.Background(), "200 George Street Sydney NSW 2000")

	if !result.Success {
		t.Fatalf("expected success on third attempt, got %q", result.Message)
	}
	if attempt != 3 {
		t.Fatalf("expected 3 driver sessions, got %d", attempt)
	}
	if len(*slept) != 2 {
		t.Fatalf("expected exactly 2 backoff delays, got %d", len(*slept))
	}
	if (*slept)[0] != 2*time.Second || (*slept)[1] != 4*time.Second {
		t.Fatalf("backoff should grow linearly, got %v", *slept)
	}
	for i, drv := range created {
		if !drv.closed {
			t.Fatalf("driver %d leaked", i)
		}
	}
	if store.writes != 1 {
		t.Fatalf("expected exactly one write, got %d", store.writes)
	}
	if journal.finished == nil || journal.finished.Attempts != 3 {
		t.Fatalf("session should record attempt 3, got %+v", journal.finished)
	}
	if result.Data == nil || result.Data.ID != 9 {
		t.Fatalf("expected read-back record with id 9, got %+v", result.Data)
	}
}

func TestSearchAmbiguousResultNotRetried(t *testing.T) {
	store := &fakeStore{}
	drivers := 0
	factory := func() (Driver, error) {
		drivers++
		return &fakeDriver{
			suggestions: []string{"200 George Street Sydney NSW 2000"},
			ambiguous:   true,
		}, nil
	}
	journal := &fakeJournal{}
	ctl, slept := newTestController(store, factory, journal)

	result := ctl.SearchProperty(context.Background(), "200 George Street Sydney NSW 2000")

	if result.Success {
		t.Fatalf("ambiguous result should fail")
	}
	if result.Message != "Please write complete and accurate address" {
		t.Fatalf("unexpected message: %q", result.Message)
	}
	if drivers != 1 || len(*slept) != 0 {
		t.Fatalf("ambiguity must not retry: %d drivers, %d sleeps", drivers, len(*slept))
	}
	if journal.finished == nil || journal.finished.Outcome != models.OutcomeAddressAmbiguous {
		t.Fatalf("expected address_ambiguous outcome, got %+v", journal.finished)
	}
}

func TestSearchExhaustsAttempts(t *testing.T) {
	store := &fakeStore{}
	factory := func() (Driver, error) {
		return &fakeDriver{navigateErr: errors.New("connection refused")}, nil
	}
	ctl, slept := newTestController(store, factory, &fakeJournal{})

	result := ctl.SearchProperty(context.Background(), "200 George Street Sydney NSW 2000")

	if result.Success {
		t.Fatalf("expected failure after exhausting attempts")
	}
	if !strings.Contains(result.Message, "after 3 attempts") {
		t.Fatalf("message should mention exhausted attempts: %q", result.Message)
	}
	if !strings.Contains(result.Message, "connection refused") {
		t.Fatalf("message should carry the last error: %q", result.Message)
	}
	if len(*slept) != 2 {
		t.Fatalf("final attempt must not be followed by a backoff, got %d sleeps", len(*slept))
	}
}

func TestSearchCancelledContext(t *testing.T) {
	store := &fakeStore{}
	factory := func() (Driver, error) {
		return &fakeDriver{suggestions: []string{"200 George Street Sydney NSW 2000"}}, nil
	}
	journal := &fakeJournal{}
	ctl, _ := newTestController(store, factory, journal)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := ctl.SearchProperty(ctx, "200 George Street Sydney NSW 2000")

	if result.Success {
		t.Fatalf("cancelled search should fail")
	}
	if !strings.Contains(result.Message, "cancelled") {
		t.Fatalf("message should indicate cancellation: %q", result.Message)
	}
	if journal.finished == nil || journal.finished.Outcome != models.OutcomeTechnicalFailure {
		t.Fatalf("cancellation is a technical failure, got %+v", journal.finished)
	}
}

func TestSearchWriteFailureRetried(t *testing.T) {
	store := &fakeStore{writeErr: errors.New("deadlock detected"), nextID: 2}
	drivers := 0
	factory := func() (Driver, error) {
		drivers++
		return &fakeDriver{
			suggestions: []string{"200 George Street Sydney NSW 2000"},
			raw: models.RawRecord{
				models.RawAddress: "200 George Street Sydney NSW 2000",
			},
		}, nil
	}
	ctl, _ := newTestController(store, factory, &fakeJournal{})

	result := ctl.SearchProperty(context.Background(), "200 George Street Sydney NSW 2000")

	if result.Success {
		t.Fatalf("persistent write failure should fail the session")
	}
	if drivers != 3 {
		t.Fatalf("write failures are transient and should retry, got %d drivers", drivers)
	}
	if store.writes != 3 {
		t.Fatalf("expected a write per attempt, got %d", store.writes)
	}
}

func TestRefreshBypassesStoredData(t *testing.T) {
	store := &fakeStore{
		nextID: 5,
		similar: &models.MatchCandidate{
			ID:      5,
			URL:     "https://rpp.corelogic.com.au/property/5",
			Address: "200 george street sydney nsw 2000",
		},
		fragments: models.RawRecord{
			models.RawAddress: "200 George Street Sydney NSW 2000",
		},
	}
	drivers := 0
	factory := func() (Driver, error) {
		drivers++
		return &fakeDriver{
			suggestions: []string{"200 George Street Sydney NSW 2000"},
			raw: models.RawRecord{
				models.RawAddress:     "200 George Street Sydney NSW 2000",
				models.RawPropertyURL: "https://rpp.corelogic.com.au/property/5",
			},
		}, nil
	}
	journal := &fakeJournal{}
	ctl, _ := newTestController(store, factory, journal)

	result := ctl.RefreshProperty(context.Background(), "200 George Street Sydney NSW 2000")

	if !result.Success {
		t.Fatalf("refresh should succeed, got %q", result.Message)
	}
	if drivers != 1 {
		t.Fatalf("refresh must scrape even with a stored match, got %d drivers", drivers)
	}
	if store.writes != 1 {
		t.Fatalf("refresh should rewrite the record, got %d writes", store.writes)
	}
	if journal.finished == nil || journal.finished.CacheHit {
		t.Fatalf("refresh session must not record a cache hit")
	}
}

func TestSearchDissimilarTopSuggestionFailsDespiteLaterMatch(t *testing.T) {
	store := &fakeStore{nextID: 1}
	drivers := 0
	factory := func() (Driver, error) {
		drivers++
		return &fakeDriver{
			suggestions: []string{
				"1 Nothing Alike Lane Hobart TAS 7000",
				"200 George Street Sydney NSW 2000",
			},
		}, nil
	}
	journal := &fakeJournal{}
	ctl, slept := newTestController(store, factory, journal)

	result := ctl.SearchProperty(context.Background(), "200 George Street Sydney NSW 2000")

	if result.Success {
		t.Fatalf("a dissimilar top suggestion must fail even when a later suggestion matches")
	}
	if !strings.Contains(result.Message, "didn't match input sufficiently") {
		t.Fatalf("unexpected message: %q", result.Message)
	}
	if drivers != 1 || len(*slept) != 0 {
		t.Fatalf("input-quality failure must not retry: %d drivers, %d sleeps", drivers, len(*slept))
	}
	if store.writes != 0 {
		t.Fatalf("nothing should be written, got %d writes", store.writes)
	}
	if journal.finished == nil || journal.finished.Outcome != models.OutcomeAddressNotFound {
		t.Fatalf("session should finish as address_not_found, got %+v", journal.finished)
	}
}
