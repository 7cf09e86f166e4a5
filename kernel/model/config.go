package model

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultBackendURL     = "https://test-backend.suntrap.workers.dev"
	DefaultRequestTimeout = 3 * time.Second
	DefaultFallbackDelay  = 500 * time.Millisecond
	DefaultHealthInterval = 30 * time.Second
	DefaultGracePeriod    = 3 * time.Second
)

// Mode selects how backend failures are handled.
type Mode string

const (
	// ModeStrict surfaces every backend failure to the caller.
	ModeStrict Mode = "strict"
	// ModeResilient substitutes fallback data when the backend fails.
	ModeResilient Mode = "resilient"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeStrict, "":
		return ModeStrict, nil
	case ModeResilient:
		return ModeResilient, nil
	}
	return "", errors.Errorf("unknown mode '%s' (expected strict or resilient)", s)
}

type InfluxConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// Config is the buildboard configuration, loaded by the loader package.
type Config struct {
	BackendURL     string        `yaml:"backend_url"`
	Mode           Mode          `yaml:"mode"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	FallbackDelay  time.Duration `yaml:"fallback_delay"`
	HealthInterval time.Duration `yaml:"health_interval"`
	GracePeriod    time.Duration `yaml:"grace_period"`
	FixturesPath   string        `yaml:"fixtures"`
	LogLevel       string        `yaml:"log_level"`
	Influx         InfluxConfig  `yaml:"influx"`
}

func DefaultConfig() *Config {
	return &Config{
		BackendURL:     DefaultBackendURL,
		Mode:           ModeStrict,
		RequestTimeout: DefaultRequestTimeout,
		FallbackDelay:  DefaultFallbackDelay,
		HealthInterval: DefaultHealthInterval,
		GracePeriod:    DefaultGracePeriod,
		LogLevel:       "info",
	}
}

// Validate fills zero durations with defaults and checks the mode.
func (c *Config) Validate() error {
	mode, err := ParseMode(string(c.Mode))
	if err != nil {
		return err
	}
	c.Mode = mode
	c.BackendURL = strings.TrimRight(c.BackendURL, "/")
	if c.BackendURL == "" {
		return errors.New("backend_url is required")
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.FallbackDelay < 0 {
		c.FallbackDelay = DefaultFallbackDelay
	}
	if c.HealthInterval <= 0 {
		c.HealthInterval = DefaultHealthInterval
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = DefaultGracePeriod
	}
	return nil
}
