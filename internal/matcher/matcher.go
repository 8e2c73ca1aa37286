// Package matcher looks up previously answered complaints.
package matcher

import (
	"strings"

	"smart-store-agent/internal/storage"
)

// Find returns the first record whose problem and the given complaint contain
// one another, ignoring case. Blank complaints and blank stored problems never match.
func Find(problem string, records []storage.Record) (storage.Record, bool) {
	q := strings.ToLower(strings.TrimSpace(problem))
	if q == "" {
		return storage.Record{}, false
	}
	for _, r := range records {
		stored := strings.ToLower(strings.TrimSpace(r.Problem))
		if stored == "" {
			continue
		}
		if strings.Contains(stored, q) || strings.Contains(q, stored) {
			return r, true
		}
	}
	return storage.Record{}, false
}
