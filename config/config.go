package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DatabaseURL   string
	JournalDBPath string
	LogPath       string
	ListenAddr    string
	Match         MatchConfig
	Scrape        ScrapeConfig
	Refresh       RefreshConfig
	Portal        PortalConfig
}

// MatchConfig carries the two similarity thresholds. They are tunable
// defaults, not proven optima.
type MatchConfig struct {
	ReuseThreshold      float64 // reuse a stored record instead of re-scraping
	SuggestionThreshold float64 // accept the top autocomplete suggestion
}

type ScrapeConfig struct {
	MaxAttempts    int
	BackoffBase    time.Duration
	SessionTimeout time.Duration
}

type RefreshConfig struct {
	Cron     string
	Interval time.Duration
	MaxAge   time.Duration
}

// PortalConfig describes the target portal. Credentials come from the
// environment; the rest may be overridden by config/portal.yaml.
type PortalConfig struct {
	BaseURL     string
	Username    string
	Password    string
	Headless    bool
	NavTimeout  time.Duration
	StepDelayMS int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JournalDBPath: getEnv("JOURNAL_DB_PATH", "scraper.db"),
		LogPath:       getEnv("LOG_PATH", "daemon.log"),
		ListenAddr:    getEnv("LISTEN_ADDR", ":5000"),
		Match: MatchConfig{
			ReuseThreshold:      getEnvFloat("MATCH_REUSE_THRESHOLD", 0.85),
			SuggestionThreshold: getEnvFloat("MATCH_SUGGESTION_THRESHOLD", 0.90),
		},
		Scrape: ScrapeConfig{
			MaxAttempts:    getEnvInt("SCRAPE_MAX_ATTEMPTS", 3),
			BackoffBase:    getEnvDuration("SCRAPE_BACKOFF_BASE", 2*time.Second),
			SessionTimeout: getEnvDuration("SCRAPE_SESSION_TIMEOUT", 10*time.Minute),
		},
		Refresh: RefreshConfig{
			Cron:   os.Getenv("REFRESH_CRON"),
			MaxAge: getEnvDuration("REFRESH_MAX_AGE", 30*24*time.Hour),
		},
		Portal: PortalConfig{
			BaseURL:     getEnv("PORTAL_URL", "https://rpp.corelogic.com.au/"),
			Username:    os.Getenv("PORTAL_USERNAME"),
			Password:    os.Getenv("PORTAL_PASSWORD"),
			Headless:    os.Getenv("PORTAL_HEADED") != "true",
			NavTimeout:  getEnvDuration("PORTAL_NAV_TIMEOUT", 60*time.Second),
			StepDelayMS: getEnvInt("PORTAL_STEP_DELAY_MS", 2000),
		},
	}

	if interval := os.Getenv("REFRESH_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.Refresh.Interval = d
		}
	}

	if err := cfg.loadPortalOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadPortalOverrides() error {
	path := "config/portal.yaml"
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var portal struct {
		BaseURL     string `yaml:"base_url"`
		Headless    *bool  `yaml:"headless"`
		StepDelayMS int    `yaml:"step_delay_ms"`
	}
	if err := yaml.Unmarshal(data, &portal); err != nil {
		return err
	}
	if portal.BaseURL != "" {
		c.Portal.BaseURL = portal.BaseURL
	}
	if portal.Headless != nil {
		c.Portal.Headless = *portal.Headless
	}
	if portal.StepDelayMS > 0 {
		c.Portal.StepDelayMS = portal.StepDelayMS
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
