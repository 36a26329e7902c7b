package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"
)

// devEventsURL is the notification endpoint assumed during local development
// when EVENTS_URL is not set and the backend itself runs on localhost.
const devEventsURL = "ws://localhost:5000/events"

type Config struct {
	ServerPort     string
	BackendURL     string
	BackendToken   string
	EventsURL      string
	JWTSecret      string
	RequestTimeout time.Duration
}

func LoadConfig() (*Config, error) {
	timeoutStr := getEnv("REQUEST_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, errors.New("invalid REQUEST_TIMEOUT format")
	}

	cfg := &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		BackendURL:     trimTrailingSlash(os.Getenv("BACKEND_URL")),
		BackendToken:   os.Getenv("BACKEND_TOKEN"),
		EventsURL:      os.Getenv("EVENTS_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		RequestTimeout: timeout,
	}

	if cfg.BackendURL != "" {
		if _, err := url.Parse(cfg.BackendURL); err != nil {
			return nil, fmt.Errorf("invalid BACKEND_URL: %w", err)
		}
	}

	return cfg, nil
}

// EventsEndpoint resolves the notification server URL. Explicit configuration
// wins; otherwise a localhost fallback applies only when the backend itself is
// local. An empty result means live events are disabled.
func (c *Config) EventsEndpoint() string {
	if c.EventsURL != "" {
		return c.EventsURL
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return ""
	}
	if host := u.Hostname(); host == "localhost" || host == "127.0.0.1" {
		return devEventsURL
	}
	return ""
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// Helper: get env with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
