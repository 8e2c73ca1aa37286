package storage

import (
	"errors"
	"time"
)

// ErrCorrupt is returned by Load when the persisted records exist but cannot be decoded.
var ErrCorrupt = errors.New("record store is corrupt")

// Record maps a customer complaint to the product suggested for it.
type Record struct {
	Problem     string `json:"problem"`
	Product     string `json:"product"`
	Description string `json:"description"`
}

// Store persists the full ordered sequence of records.
// Load returns an empty sequence when nothing has been saved yet.
// Save replaces whatever was stored before.
type Store interface {
	Load() ([]Record, error)
	Save(records []Record) error
}

// Event represents a single answered complaint.
// Events are expected to be appended in chronological order.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Session   string    `json:"session"`
	Channel   string    `json:"channel,omitempty"`
	Problem   string    `json:"problem"`
	Product   string    `json:"product"`
	CacheHit  bool      `json:"cache_hit"`
}

// Recorder abstracts persistence of interaction events.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
}
