package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"rpp_scraper/models"
)

// Searcher runs one property search end to end.
type Searcher interface {
	SearchProperty(ctx context.Context, address string) *models.SearchResult
}

// SessionReader exposes the scrape-session journal for inspection.
type SessionReader interface {
	RecentSessions(ctx context.Context, limit int) ([]models.ScrapeSession, error)
	SessionLogs(ctx context.Context, sessionID uuid.UUID) ([]models.SessionLog, error)
}

// RefreshTrigger kicks off a stale-data refresh run.
type RefreshTrigger interface {
	Trigger(ctx context.Context)
}

type Server struct {
	searcher       Searcher
	sessions       SessionReader
	refresh        RefreshTrigger
	sessionTimeout time.Duration
	httpServer     *http.Server
	router         *mux.Router
}

func NewServer(addr string, sessionTimeout time.Duration, searcher Searcher, sessions SessionReader, refresh RefreshTrigger) *Server {
	s := &Server{
		searcher:       searcher,
		sessions:       sessions,
		refresh:        refresh,
		sessionTimeout: sessionTimeout,
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.router,
		// Scrapes run minutes, not seconds
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()
	s.router.HandleFunc("/", s.handleHome).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/scrape-property", s.handleScrapeProperty).Methods("POST")
	s.router.HandleFunc("/sessions", s.handleSessions).Methods("GET")
	s.router.HandleFunc("/sessions/{id}/logs", s.handleSessionLogs).Methods("GET")
	s.router.HandleFunc("/refresh", s.handleRefresh).Methods("POST")
}

func (s *Server) Start() error {
	log.Printf("API server listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Property Scraper API",
		"version": "1.0",
		"endpoints": map[string]string{
			"POST /scrape-property": "Scrape property data by address",
			"GET /sessions":         "List recent scrape sessions",
			"GET /health":           "Service health",
		},
		"usage": map[string]interface{}{
			"method": "POST",
			"url":    "/scrape-property",
			"body":   map[string]string{"address": "200 George Street Sydney NSW 2000"},
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScrapeProperty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, &models.SearchResult{
			Success: false,
			Message: "Invalid JSON body",
		})
		return
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		writeJSON(w, http.StatusBadRequest, &models.SearchResult{
			Success: false,
			Message: "Address is required",
		})
		return
	}

	// Every search is bounded by the session timeout, same as one-shot mode.
	ctx := r.Context()
	if s.sessionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.sessionTimeout)
		defer cancel()
	}

	// Search failures are part of the envelope, not HTTP errors.
	result := s.searcher.SearchProperty(ctx, address)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session journal not configured"})
		return
	}

	sessions, err := s.sessions.RecentSessions(r.Context(), 50)
	if err != nil {
		log.Printf("Error listing sessions: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list sessions"})
		return
	}
	if sessions == nil {
		sessions = []models.ScrapeSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleSessionLogs(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session journal not configured"})
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return
	}

	logs, err := s.sessions.SessionLogs(r.Context(), id)
	if err != nil {
		log.Printf("Error reading session logs: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read session logs"})
		return
	}
	if logs == nil {
		logs = []models.SessionLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresh == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "refresh scheduler not configured"})
		return
	}
	s.refresh.Trigger(context.Background())
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh started"})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
