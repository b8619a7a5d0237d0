package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"rpp_scraper/config"
	"rpp_scraper/models"
)

// Refresher re-scrapes one address bypassing stored-data reuse; in the
// daemon this is the session controller.
type Refresher interface {
	RefreshProperty(ctx context.Context, address string) *models.SearchResult
}

// StaleLister enumerates stored addresses due for a refresh.
type StaleLister interface {
	ListStaleAddresses(ctx context.Context, olderThan time.Duration, limit int) ([]string, error)
}

const refreshBatchSize = 20

// Scheduler periodically re-scrapes properties whose data has gone stale.
// Refresh runs are serial; the portal does not tolerate parallel sessions
// on one account.
type Scheduler struct {
	cfg       config.RefreshConfig
	refresher Refresher
	store     StaleLister
	cron      *cron.Cron
	ticker    *time.Ticker
	stopCh    chan struct{}
	running   chan struct{}
}

func New(cfg config.RefreshConfig, refresher Refresher, store StaleLister) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		refresher: refresher,
		store:     store,
		cron:      cron.New(),
		stopCh:    make(chan struct{}),
		running:   make(chan struct{}, 1),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Cron != "" {
		log.Printf("Starting refresh scheduler with cron: %s", s.cfg.Cron)
		_, err := s.cron.AddFunc(s.cfg.Cron, func() { s.runRefresh(ctx) })
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
		return nil
	}

	if s.cfg.Interval > 0 {
		log.Printf("Starting refresh scheduler with interval: %s", s.cfg.Interval)
		s.ticker = time.NewTicker(s.cfg.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.runRefresh(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
		return nil
	}

	log.Println("No refresh schedule configured, stale data will persist until searched")
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

// Trigger starts a refresh run immediately.
func (s *Scheduler) Trigger(ctx context.Context) {
	go s.runRefresh(ctx)
}

func (s *Scheduler) runRefresh(ctx context.Context) {
	select {
	case s.running <- struct{}{}:
		defer func() { <-s.running }()
	default:
		log.Println("Refresh run already in progress, skipping")
		return
	}

	addresses, err := s.store.ListStaleAddresses(ctx, s.cfg.MaxAge, refreshBatchSize)
	if err != nil {
		log.Printf("Error listing stale properties: %v", err)
		return
	}
	if len(addresses) == 0 {
		log.Println("Refresh run: no stale properties")
		return
	}

	log.Printf("Refresh run: %d stale properties", len(addresses))
	for _, address := range addresses {
		if ctx.Err() != nil {
			return
		}
		result := s.refresher.RefreshProperty(ctx, address)
		if !result.Success {
			log.Printf("Refresh failed for %q: %s", address, result.Message)
		}
	}
}
