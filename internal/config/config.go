package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	TelegramToken   string
	TelegramAPIBase string
	SweepInterval   time.Duration
	SessionTTL      time.Duration
	ContentCacheTTL time.Duration
	EventTimeout    time.Duration
	ShutdownTimeout time.Duration
	SendRate        float64
	SendBurst       int
}

const (
	defaultRunAddress      = ":8080"
	defaultTelegramAPIBase = "https://api.telegram.org"
	defaultSweepInterval   = 24 * time.Hour
	defaultSessionTTL      = 24 * time.Hour
	defaultContentCacheTTL = 5 * time.Minute
	defaultEventTimeout    = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultSendRate        = 25.0
	defaultSendBurst       = 5
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:      getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:     getString(lookup, "DATABASE_URI", ""),
		TelegramToken:   getString(lookup, "TELEGRAM_TOKEN", ""),
		TelegramAPIBase: getString(lookup, "TELEGRAM_API_BASE", defaultTelegramAPIBase),
		SweepInterval:   getDuration(lookup, "SWEEP_INTERVAL", defaultSweepInterval),
		SessionTTL:      getDuration(lookup, "SESSION_TTL", defaultSessionTTL),
		ContentCacheTTL: getDuration(lookup, "CONTENT_CACHE_TTL", defaultContentCacheTTL),
		EventTimeout:    getDuration(lookup, "EVENT_TIMEOUT", defaultEventTimeout),
		ShutdownTimeout: getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		SendRate:        getFloat(lookup, "SEND_RATE", defaultSendRate),
		SendBurst:       getInt(lookup, "SEND_BURST", defaultSendBurst),
	}

	fs := flag.NewFlagSet("subbot", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		sweepIntervalStr   = cfg.SweepInterval.String()
		sessionTTLStr      = cfg.SessionTTL.String()
		eventTimeoutStr    = cfg.EventTimeout.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.TelegramToken, "token", cfg.TelegramToken, "Telegram bot token")
	fs.StringVar(&cfg.TelegramAPIBase, "api-base", cfg.TelegramAPIBase, "Telegram API base URL")
	fs.StringVar(&sweepIntervalStr, "sweep-interval", sweepIntervalStr, "Interval between expiry sweeps")
	fs.StringVar(&sessionTTLStr, "session-ttl", sessionTTLStr, "Idle conversation session lifetime")
	fs.StringVar(&eventTimeoutStr, "event-timeout", eventTimeoutStr, "Per-update processing deadline")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.Float64Var(&cfg.SendRate, "send-rate", cfg.SendRate, "Outbound messages per second")
	fs.IntVar(&cfg.SendBurst, "send-burst", cfg.SendBurst, "Outbound message burst size")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.SweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}

	if cfg.SessionTTL, err = time.ParseDuration(sessionTTLStr); err != nil {
		return nil, fmt.Errorf("invalid session ttl: %w", err)
	}

	if cfg.EventTimeout, err = time.ParseDuration(eventTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid event timeout: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if tokenFile, ok := lookup("TELEGRAM_TOKEN_FILE"); ok && tokenFile != "" {
		content, err := os.ReadFile(tokenFile)
		if err != nil {
			return nil, fmt.Errorf("read telegram token file: %w", err)
		}
		cfg.TelegramToken = string(content)
	}

	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}

	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}

	if cfg.ContentCacheTTL <= 0 {
		cfg.ContentCacheTTL = defaultContentCacheTTL
	}

	if cfg.EventTimeout <= 0 {
		cfg.EventTimeout = defaultEventTimeout
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.SendRate <= 0 {
		cfg.SendRate = defaultSendRate
	}

	if cfg.SendBurst <= 0 {
		cfg.SendBurst = defaultSendBurst
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("telegram token must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
