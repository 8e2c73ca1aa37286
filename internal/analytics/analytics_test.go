package analytics

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"smart-store-agent/internal/storage"
)

func testEvents(day time.Time) []storage.Event {
	return []storage.Event{
		{Timestamp: day.Add(2 * time.Hour), Session: "1", Channel: "telegram", Problem: "headache", Product: "Aspirin", CacheHit: true},
		{Timestamp: day.Add(3 * time.Hour), Session: "1", Channel: "telegram", Problem: "nausea", Product: "Dramamine"},
		{Timestamp: day.Add(5 * time.Hour), Session: "abc", Channel: "http", Problem: "headache again", Product: "Aspirin", CacheHit: true},
		// next day
		{Timestamp: day.AddDate(0, 0, 1), Session: "2", Channel: "telegram", Problem: "fever", Product: "Paracetamol"},
		// previous day
		{Timestamp: day.Add(-time.Second), Session: "3", Channel: "telegram", Problem: "cough", Product: "Syrup"},
		// no problem text
		{Timestamp: day.Add(6 * time.Hour), Session: "1", Channel: "telegram"},
	}
}

func TestAnalyzeDaily(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	stats := AnalyzeDaily(testEvents(day), day.Add(13*time.Hour))

	if stats.Date != "2024-01-15" {
		t.Errorf("Expected date '2024-01-15', got '%s'", stats.Date)
	}
	if stats.TotalRequests != 3 {
		t.Errorf("Expected 3 requests, got %d", stats.TotalRequests)
	}
	if stats.UniqueSessions != 2 {
		t.Errorf("Expected 2 unique sessions, got %d", stats.UniqueSessions)
	}
	if stats.CacheHits != 2 || stats.CacheMisses != 1 {
		t.Errorf("Expected 2 hits and 1 miss, got %d/%d", stats.CacheHits, stats.CacheMisses)
	}
	if stats.ByChannel["telegram"] != 2 || stats.ByChannel["http"] != 1 {
		t.Errorf("Unexpected channel counts: %v", stats.ByChannel)
	}
	if stats.ProductsByName["Aspirin"] != 2 || stats.ProductsByName["Dramamine"] != 1 {
		t.Errorf("Unexpected product counts: %v", stats.ProductsByName)
	}
}

func TestTopProductsAndSummary(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	stats := AnalyzeDaily(testEvents(day), day)

	top := stats.TopProducts(1)
	if len(top) != 1 || top[0] != "Aspirin (2)" {
		t.Fatalf("unexpected top products: %v", top)
	}

	s := stats.Summary()
	for _, want := range []string{"2024-01-15", "Requests: 3", "hit rate 67%", "- http: 1", "Dramamine (1)"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestEmptyDay(t *testing.T) {
	stats := AnalyzeDaily(nil, time.Now())
	if stats.TotalRequests != 0 || stats.HitRate() != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if strings.Contains(stats.Summary(), "Top products") {
		t.Fatalf("empty summary should not list products")
	}
}

func TestToJSON(t *testing.T) {
	stats := &DailyStats{Date: "2024-01-15", TotalRequests: 1, ProductsByName: map[string]int{"Aspirin": 1}}
	s, err := stats.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal([]byte(s), &back); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if back["date"] != "2024-01-15" {
		t.Fatalf("unexpected date: %v", back["date"])
	}
}
