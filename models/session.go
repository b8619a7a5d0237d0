package models

import (
	"time"

	"github.com/google/uuid"
)

// Session outcomes.
const (
	OutcomePending          = "pending"
	OutcomeSuccess          = "success"
	OutcomeAddressAmbiguous = "address_ambiguous"
	OutcomeAddressNotFound  = "address_not_found"
	OutcomeTechnicalFailure = "technical_failure"
)

// ScrapeSession is the journal record for one search invocation. It is
// written to the operational store and never consulted by the search path.
type ScrapeSession struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Address    string     `json:"address" db:"address"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at" db:"finished_at"`
	Outcome    string     `json:"outcome" db:"outcome"`
	Attempts   int        `json:"attempts" db:"attempts"`
	CacheHit   bool       `json:"cache_hit" db:"cache_hit"`
	Message    string     `json:"message" db:"message"`
}

// SessionLog is one journal line scoped to a session.
type SessionLog struct {
	ID        int64     `json:"id" db:"id"`
	SessionID uuid.UUID `json:"session_id" db:"session_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Level     string    `json:"level" db:"level"`
	Message   string    `json:"message" db:"message"`
}

// Log levels, matching the journal schema.
type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
