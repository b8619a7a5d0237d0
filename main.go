package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rpp_scraper/api"
	"rpp_scraper/config"
	"rpp_scraper/logging"
	"rpp_scraper/scheduler"
	"rpp_scraper/scraper"
	"rpp_scraper/services"
	"rpp_scraper/storage"
)

var (
	searchAddress = flag.String("address", "", "Search one address, print the result and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logWriter, err := logging.Setup(cfg.LogPath)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logWriter.Close()
	}

	log.Println("Starting rpp_scraper...")

	ctx := context.Background()

	// Property data lives in Postgres
	pgStore, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()
	log.Printf("Connected to Postgres: %s", logging.MaskConnectionString(cfg.DatabaseURL))

	// Operational session journal lives in SQLite
	journal, err := storage.NewSQLiteJournal(cfg.JournalDBPath)
	if err != nil {
		log.Fatalf("Failed to open session journal: %v", err)
	}
	defer journal.Close()
	log.Printf("Session journal: %s", cfg.JournalDBPath)

	matcher := services.NewMatchService(pgStore, cfg.Match.ReuseThreshold, cfg.Match.SuggestionThreshold)
	controller := scraper.NewSessionController(
		cfg.Scrape, cfg.Portal.BaseURL,
		scraper.NewDriverFactory(cfg.Portal),
		pgStore, matcher, journal,
	)

	// One-shot mode: search a single address and print the envelope.
	if *searchAddress != "" {
		searchCtx, cancel := context.WithTimeout(ctx, cfg.Scrape.SessionTimeout)
		defer cancel()

		result := controller.SearchProperty(searchCtx, *searchAddress)
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode result: %v", err)
		}
		fmt.Println(string(output))
		if !result.Success {
			os.Exit(1)
		}
		return
	}

	// Daemon mode: API server plus refresh scheduler.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.New(cfg.Refresh, controller, pgStore)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start refresh scheduler: %v", err)
	}

	server := api.NewServer(cfg.ListenAddr, cfg.Scrape.SessionTimeout, controller, journal, sched)
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("API server error: %v", err)
		}
	}()

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: API server shutdown: %v", err)
	}
	sched.Stop()
	cancel()
	log.Println("Goodbye!")
}
