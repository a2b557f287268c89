package janitor

import (
	"context"
	"time"

	"github.com/askwhyharsh/scamcheck/pkg/logger"
)

// Sweeper drops expired in-process state and reports how many keys it
// removed. Redis-backed stores expire keys by themselves.
type Sweeper interface {
	Sweep() int
}

// Janitor calls Sweep on a ticker until its context is cancelled.
type Janitor struct {
	name     string
	sweeper  Sweeper
	interval time.Duration
	logger   logger.Logger
}

func New(name string, sweeper Sweeper, interval time.Duration, log logger.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Janitor{
		name:     name,
		sweeper:  sweeper,
		interval: interval,
		logger:   log,
	}
}

func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("Janitor started", "name", j.name, "interval", j.interval)

	for {
		select {
		case <-ticker.C:
			if n := j.sweeper.Sweep(); n > 0 {
				j.logger.Debug("Swept expired keys", "name", j.name, "keys", n)
			}
		case <-ctx.Done():
			j.logger.Info("Janitor stopped", "name", j.name)
			return
		}
	}
}
