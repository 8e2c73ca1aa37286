package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"smart-store-agent/internal/storage"
)

// DailyStats summarises one UTC day of answered complaints.
type DailyStats struct {
	Date           string         `json:"date"`
	TotalRequests  int            `json:"total_requests"`
	UniqueSessions int            `json:"unique_sessions"`
	CacheHits      int            `json:"cache_hits"`
	CacheMisses    int            `json:"cache_misses"`
	ByChannel      map[string]int `json:"by_channel"`
	ProductsByName map[string]int `json:"products_by_name"`
}

// AnalyzeDaily counts the events that happened on the UTC day containing day.
func AnalyzeDaily(events []storage.Event, day time.Time) *DailyStats {
	day = day.UTC()
	startOfDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	endOfDay := startOfDay.Add(24 * time.Hour)

	stats := &DailyStats{
		Date:           startOfDay.Format("2006-01-02"),
		ByChannel:      make(map[string]int),
		ProductsByName: make(map[string]int),
	}
	sessions := make(map[string]bool)

	for _, ev := range events {
		if ev.Timestamp.Before(startOfDay) || !ev.Timestamp.Before(endOfDay) {
			continue
		}
		if ev.Problem == "" {
			continue
		}
		stats.TotalRequests++
		sessions[ev.Channel+"/"+ev.Session] = true
		if ev.CacheHit {
			stats.CacheHits++
		} else {
			stats.CacheMisses++
		}
		if ev.Channel != "" {
			stats.ByChannel[ev.Channel]++
		}
		if ev.Product != "" {
			stats.ProductsByName[ev.Product]++
		}
	}

	stats.UniqueSessions = len(sessions)
	return stats
}

// HitRate is the share of requests answered from the record store.
func (ds *DailyStats) HitRate() float64 {
	if ds.TotalRequests == 0 {
		return 0
	}
	return float64(ds.CacheHits) / float64(ds.TotalRequests)
}

type productCount struct {
	name  string
	count int
}

// TopProducts returns up to n products ordered by count, then name.
func (ds *DailyStats) TopProducts(n int) []string {
	list := make([]productCount, 0, len(ds.ProductsByName))
	for name, c := range ds.ProductsByName {
		list = append(list, productCount{name, c})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].name < list[j].name
	})
	if n > 0 && len(list) > n {
		list = list[:n]
	}
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, fmt.Sprintf("%s (%d)", p.name, p.count))
	}
	return out
}

// Summary renders a plain-text report.
func (ds *DailyStats) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Smart Store Agent usage for %s\n\n", ds.Date)
	fmt.Fprintf(&b, "- Requests: %d\n", ds.TotalRequests)
	fmt.Fprintf(&b, "- Unique sessions: %d\n", ds.UniqueSessions)
	fmt.Fprintf(&b, "- Cache hits: %d, misses: %d (hit rate %.0f%%)\n", ds.CacheHits, ds.CacheMisses, ds.HitRate()*100)

	if len(ds.ByChannel) > 0 {
		channels := make([]string, 0, len(ds.ByChannel))
		for ch := range ds.ByChannel {
			channels = append(channels, ch)
		}
		sort.Strings(channels)
		b.WriteString("\nBy channel:\n")
		for _, ch := range channels {
			fmt.Fprintf(&b, "- %s: %d\n", ch, ds.ByChannel[ch])
		}
	}

	if top := ds.TopProducts(5); len(top) > 0 {
		b.WriteString("\nTop products:\n")
		for _, p := range top {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	return b.String()
}

// ToJSON renders the stats as indented JSON.
func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
