package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/askwhyharsh/scamcheck/internal/scam"
)

const (
	DefaultMaxItems = 5

	// TextOnlyDomain labels entries for analyses that had no URL.
	TextOnlyDomain = "Text Only"
)

// Entry is the summary kept for one past analysis.
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Score     int           `json:"score"`
	Severity  scam.Severity `json:"severity"`
	Domain    string        `json:"domain"`
	Tags      []string      `json:"tags"`
}

// Store keeps the most recent entries per client, newest first.
type Store interface {
	Add(ctx context.Context, clientID string, entry Entry) error
	List(ctx context.Context, clientID string) ([]Entry, error)
	Clear(ctx context.Context, clientID string) error
}

func NewEntry(a scam.Analysis, now time.Time) Entry {
	domain := a.Domain
	if domain == "" {
		domain = TextOnlyDomain
	}

	tags := make([]string, len(a.Tags))
	copy(tags, a.Tags)

	return Entry{
		ID:        uuid.New().String(),
		Timestamp: now,
		Score:     a.Score,
		Severity:  a.Severity,
		Domain:    domain,
		Tags:      tags,
	}
}
