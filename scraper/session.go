package scraper

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"rpp_scraper/config"
	"rpp_scraper/models"
	"rpp_scraper/services"
)

// PropertyStore is the persistence contract the controller needs: write a
// scraped record, then read the same property back for formatting.
type PropertyStore interface {
	ReadFragments(ctx context.Context, propertyID int64) (models.RawRecord, error)
	WriteRecord(ctx context.Context, raw models.RawRecord) (int64, error)
	ReadBack(ctx context.Context, propertyID int64) (models.RawRecord, error)
}

// Journal records session outcomes and per-session log lines. It is
// operational bookkeeping only; the search path never reads from it.
type Journal interface {
	CreateSession(ctx context.Context, session *models.ScrapeSession) error
	FinishSession(ctx context.Context, session *models.ScrapeSession) error
	AppendLog(ctx context.Context, sessionID uuid.UUID, level models.LogLevel, message string) error
}

// sessionError classifies a failed step. Non-retryable errors carry the
// outcome they terminate the session with; retryable errors consume an
// attempt slot.
type sessionError struct {
	message   string
	outcome   string
	retryable bool
	cause     error
}

func (e *sessionError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *sessionError) Unwrap() error { return e.cause }

func inputFailure(outcome, message string) *sessionError {
	return &sessionError{message: message, outcome: outcome, retryable: false}
}

func transientFailure(message string, cause error) *sessionError {
	return &sessionError{message: message, outcome: models.OutcomeTechnicalFailure, retryable: true, cause: cause}
}

// SessionController runs one property search end to end: cache check,
// browser attempts with retry, persistence and read-back. Both the
// cache-hit and fresh-scrape paths produce their response through the
// same transform.
type SessionController struct {
	cfg       config.ScrapeConfig
	portalURL string
	newDriver DriverFactory
	store     PropertyStore
	matcher   *services.MatchService
	journal   Journal

	// sleep is swappable for tests
	sleep func(time.Duration)
}

func NewSessionController(cfg config.ScrapeConfig, portalURL string, factory DriverFactory, store PropertyStore, matcher *services.MatchService, journal Journal) *SessionController {
	return &SessionController{
		cfg:       cfg,
		portalURL: portalURL,
		newDriver: factory,
		store:     store,
		matcher:   matcher,
		journal:   journal,
		sleep:     time.Sleep,
	}
}

// SearchProperty resolves an address to a canonical property record. The
// returned envelope always encodes failures; it never panics past this
// boundary.
func (c *SessionController) SearchProperty(ctx context.Context, address string) *models.SearchResult {
	session := &models.ScrapeSession{
		ID:        uuid.New(),
		Address:   address,
		StartedAt: time.Now(),
		Outcome:   models.OutcomePending,
	}
	c.journalCreate(ctx, session)

	log.Printf("Starting property search for address: %s", address)
	c.log(ctx, session, models.LogLevelInfo, fmt.Sprintf("search started for %q", address))

	result := c.run(ctx, session, address, true)

	now := time.Now()
	session.FinishedAt = &now
	session.Message = result.Message
	c.journalFinish(ctx, session)

	return result
}

// RefreshProperty re-scrapes an address unconditionally, bypassing the
// stored-data reuse check. Used by the stale-data refresh schedule.
func (c *SessionController) RefreshProperty(ctx context.Context, address string) *models.SearchResult {
	session := &models.ScrapeSession{
		ID:        uuid.New(),
		Address:   address,
		StartedAt: time.Now(),
		Outcome:   models.OutcomePending,
	}
	c.journalCreate(ctx, session)

	log.Printf("Starting property refresh for address: %s", address)
	c.log(ctx, session, models.LogLevelInfo, fmt.Sprintf("refresh started for %q", address))

	result := c.run(ctx, session, address, false)

	now := time.Now()
	session.FinishedAt = &now
	session.Message = result.Message
	c.journalFinish(ctx, session)

	return result
}

func (c *SessionController) run(ctx context.Context, session *models.ScrapeSession, address string, allowCache bool) *models.SearchResult {
	// Cache check first: a stored address close enough to the query is
	// served from the database without opening a browser.
	if allowCache {
		if record, ok := c.tryCache(ctx, session, address); ok {
			session.Outcome = models.OutcomeSuccess
			session.CacheHit = true
			return &models.SearchResult{
				Success: true,
				Message: "Property data loaded from database",
				Data:    record,
			}
		}
	}

	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			session.Outcome = models.OutcomeTechnicalFailure
			return &models.SearchResult{
				Success: false,
				Message: fmt.Sprintf("Search cancelled: %v", err),
			}
		}

		session.Attempts = attempt
		log.Printf("Attempt %d/%d for address: %s", attempt, c.cfg.MaxAttempts, address)
		c.log(ctx, session, models.LogLevelInfo, fmt.Sprintf("attempt %d/%d", attempt, c.cfg.MaxAttempts))

		record, err := c.runAttempt(ctx, address)
		if err == nil {
			session.Outcome = models.OutcomeSuccess
			c.log(ctx, session, models.LogLevelInfo, fmt.Sprintf("scraped and stored on attempt %d", attempt))
			return &models.SearchResult{
				Success: true,
				Message: "Property data scraped and saved successfully",
				Data:    record,
			}
		}

		sessErr, ok := err.(*sessionError)
		if ok && !sessErr.retryable {
			session.Outcome = sessErr.outcome
			c.log(ctx, session, models.LogLevelWarn, sessErr.message)
			return &models.SearchResult{
				Success: false,
				Message: sessErr.message,
			}
		}

		lastErr = err
		log.Printf("Warning: attempt %d failed: %v", attempt, err)
		c.log(ctx, session, models.LogLevelError, fmt.Sprintf("attempt %d failed: %v", attempt, err))

		if attempt < c.cfg.MaxAttempts {
			c.sleep(c.cfg.BackoffBase * time.Duration(attempt))
		}
	}

	session.Outcome = models.OutcomeTechnicalFailure
	return &models.SearchResult{
		Success: false,
		Message: fmt.Sprintf("Error during scraping after %d attempts: %v", c.cfg.MaxAttempts, lastErr),
	}
}

// tryCache serves the record from storage when a stored address scores at
// or above the reuse threshold.
func (c *SessionController) tryCache(ctx context.Context, session *models.ScrapeSession, address string) (*models.PropertyRecord, bool) {
	candidate, err := c.matcher.FindStoredMatch(ctx, address)
	if err != nil {
		log.Printf("Warning: cache lookup failed: %v", err)
		c.log(ctx, session, models.LogLevelWarn, fmt.Sprintf("cache lookup failed: %v", err))
		return nil, false
	}
	if candidate == nil {
		return nil, false
	}

	raw, err := c.store.ReadFragments(ctx, candidate.ID)
	if err != nil {
		log.Printf("Warning: failed to read stored fragments for property %d: %v", candidate.ID, err)
		c.log(ctx, session, models.LogLevelWarn, fmt.Sprintf("fragment read failed for property %d: %v", candidate.ID, err))
		return nil, false
	}

	log.Printf("Found existing property with similarity %.3f: %s", candidate.Similarity, candidate.Address)
	c.log(ctx, session, models.LogLevelInfo, fmt.Sprintf("cache hit, similarity %.3f", candidate.Similarity))

	return services.Transform(candidate.ID, raw), true
}

// runAttempt drives one full browser pass. The driver is always closed
// before the attempt's verdict is returned.
func (c *SessionController) runAttempt(ctx context.Context, address string) (*models.PropertyRecord, error) {
	drv, err := c.newDriver()
	if err != nil {
		return nil, transientFailure("failed to start browser session", err)
	}
	defer drv.Close()

	if err := drv.NavigateTo(ctx, c.portalURL); err != nil {
		return nil, transientFailure("portal navigation failed", err)
	}

	suggestions, err := drv.SubmitAddress(ctx, address)
	if err != nil {
		return nil, transientFailure("address search failed", err)
	}
	if len(suggestions) == 0 {
		return nil, transientFailure("no autocomplete suggestions appeared", nil)
	}

	index, score, ok := c.matcher.TopSuggestion(address, suggestions)
	if !ok {
		return nil, inputFailure(models.OutcomeAddressNotFound,
			fmt.Sprintf("Top suggestion didn't match input sufficiently (similarity=%.2f).", score))
	}

	if err := drv.SelectSuggestion(ctx, index); err != nil {
		return nil, transientFailure("suggestion selection failed", err)
	}

	ready, err := drv.WaitForResultsReady(ctx)
	if err != nil {
		return nil, transientFailure("results page failed to load", err)
	}
	if !ready {
		return nil, transientFailure("results page never became ready", nil)
	}

	ambiguous, err := drv.DetectAmbiguousResult(ctx)
	if err != nil {
		log.Printf("Warning: ambiguity check failed, proceeding with extraction: %v", err)
	} else if ambiguous {
		return nil, inputFailure(models.OutcomeAddressAmbiguous, "Please write complete and accurate address")
	}

	raw, err := drv.ExtractRawFields(ctx)
	if err != nil {
		return nil, transientFailure("failed to extract property data", err)
	}
	if raw.Get(models.RawAddress) == "" && raw.Get(models.RawPropertyURL) == "" {
		return nil, transientFailure("extraction produced no usable record", nil)
	}

	propertyID, err := c.store.WriteRecord(ctx, raw)
	if err != nil {
		return nil, transientFailure("failed to store property in database", err)
	}
	log.Printf("Stored property %d in database", propertyID)

	// Read back what was just written so fresh scrapes and cache hits
	// flow through the same formatting path.
	stored, err := c.store.ReadBack(ctx, propertyID)
	if err != nil {
		return nil, transientFailure("failed to read back stored property", err)
	}

	return services.Transform(propertyID, stored), nil
}

func (c *SessionController) journalCreate(ctx context.Context, session *models.ScrapeSession) {
	if c.journal == nil {
		return
	}
	if err := c.journal.CreateSession(ctx, session); err != nil {
		log.Printf("Warning: failed to create session record: %v", err)
	}
}

func (c *SessionController) journalFinish(ctx context.Context, session *models.ScrapeSession) {
	if c.journal == nil {
		return
	}
	if err := c.journal.FinishSession(ctx, session); err != nil {
		log.Printf("Warning: failed to finish session record: %v", err)
	}
}

func (c *SessionController) log(ctx context.Context, session *models.ScrapeSession, level models.LogLevel, message string) {
	if c.journal == nil {
		return
	}
	if err := c.journal.AppendLog(ctx, session.ID, level, message); err != nil {
		log.Printf("Warning: failed to append session log: %v", err)
	}
}
