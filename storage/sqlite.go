package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"rpp_scraper/models"
)

// SQLiteJournal records scrape sessions and their log lines in a local
// operational database, separate from the property store.
type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	journal := &SQLiteJournal{db: db}
	if err := journal.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return journal, nil
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func (j *SQLiteJournal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scrape_sessions (
		id TEXT PRIMARY KEY,
		address TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		outcome TEXT NOT NULL DEFAULT 'pending',
		attempts INTEGER NOT NULL DEFAULT 0,
		cache_hit BOOLEAN NOT NULL DEFAULT FALSE,
		message TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS session_logs (
		id INTEGER PRIMARY KEY,
		session_id TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		FOREIGN KEY (session_id) REFERENCES scrape_sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_started ON scrape_sessions(started_at);
	CREATE INDEX IF NOT EXISTS idx_sessions_outcome ON scrape_sessions(outcome, started_at);
	CREATE INDEX IF NOT EXISTS idx_session_logs ON session_logs(session_id, timestamp);
	`
	_, err := j.db.Exec(schema)
	return err
}

func (j *SQLiteJournal) CreateSession(ctx context.Context, session *models.ScrapeSession) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO scrape_sessions (id, address, started_at, outcome, attempts, cache_hit, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID.String(), session.Address, session.StartedAt,
		session.Outcome, session.Attempts, session.CacheHit, session.Message)
	return err
}

func (j *SQLiteJournal) FinishSession(ctx context.Context, session *models.ScrapeSession) error {
	_, err := j.db.ExecContext(ctx, `
		UPDATE scrape_sessions SET finished_at = ?, outcome = ?, attempts = ?, cache_hit = ?, message = ?
		WHERE id = ?`,
		session.FinishedAt, session.Outcome, session.Attempts,
		session.CacheHit, session.Message, session.ID.String())
	return err
}

func (j *SQLiteJournal) AppendLog(ctx context.Context, sessionID uuid.UUID, level models.LogLevel, message string) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO session_logs (session_id, timestamp, level, message)
		VALUES (?, ?, ?, ?)`,
		sessionID.String(), time.Now(), string(level), message)
	return err
}

// GetSession reads one session record, or nil when absent.
func (j *SQLiteJournal) GetSession(ctx context.Context, id uuid.UUID) (*models.ScrapeSession, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT id, address, started_at, finished_at, outcome, attempts, cache_hit, message
		FROM scrape_sessions WHERE id = ?`, id.String())

	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// RecentSessions lists the latest sessions, newest first.
func (j *SQLiteJournal) RecentSessions(ctx context.Context, limit int) ([]models.ScrapeSession, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, address, started_at, finished_at, outcome, attempts, cache_hit, message
		FROM scrape_sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.ScrapeSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// SessionLogs lists the log lines for one session in order.
func (j *SQLiteJournal) SessionLogs(ctx context.Context, sessionID uuid.UUID) ([]models.SessionLog, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, session_id, timestamp, level, message
		FROM session_logs WHERE session_id = ? ORDER BY timestamp, id`, sessionID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.SessionLog
	for rows.Next() {
		var entry models.SessionLog
		var rawID string
		if err := rows.Scan(&entry.ID, &rawID, &entry.Timestamp, &entry.Level, &entry.Message); err != nil {
			return nil, err
		}
		if parsed, err := uuid.Parse(rawID); err == nil {
			entry.SessionID = parsed
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.ScrapeSession, error) {
	var session models.ScrapeSession
	var rawID string
	var finished sql.NullTime
	err := row.Scan(&rawID, &session.Address, &session.StartedAt, &finished,
		&session.Outcome, &session.Attempts, &session.CacheHit, &session.Message)
	if err != nil {
		return nil, err
	}
	if parsed, err := uuid.Parse(rawID); err == nil {
		session.ID = parsed
	}
	if finished.Valid {
		session.FinishedAt = &finished.Time
	}
	return &session, nil
}
