package ratelimit

import (
	"time"

	"github.com/askwhyharsh/scamcheck/internal/config"
)

type Config struct {
	AnalysesPerMin    int
	RequestsPerMinute int
	Window            time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		AnalysesPerMin:    30,
		RequestsPerMinute: 100,
		Window:            time.Minute,
	}
}

// NewConfig fills a Config from the service configuration, keeping defaults
// for anything unset.
func NewConfig(cfg config.RateLimitConfig) *Config {
	c := DefaultConfig()
	if cfg.AnalysesPerMin > 0 {
		c.AnalysesPerMin = cfg.AnalysesPerMin
	}
	if cfg.RequestsPerMinute > 0 {
		c.RequestsPerMinute = cfg.RequestsPerMinute
	}
	return c
}
