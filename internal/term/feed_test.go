package term

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func feedICS(lines ...string) []byte {
	all := append([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//registrar//EN",
	}, lines...)
	all = append(all, "END:VCALENDAR", "")
	return []byte(strings.Join(all, "\r\n"))
}

func TestParseFeed(t *testing.T) {
	body := feedICS(
		"BEGIN:VEVENT",
		"UID:break-1",
		"DTSTAMP:20250101T000000Z",
		"DTSTART;VALUE=DATE:20250317",
		"DTEND;VALUE=DATE:20250322",
		"SUMMARY:Spring Break - No Classes",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:comm-1",
		"DTSTAMP:20250101T000000Z",
		"DTSTART;VALUE=DATE:20250517",
		"SUMMARY:Commencement Weekend",
		"END:VEVENT",
	)

	entries, err := ParseFeed(body)
	if err != nil {
		t.Fatalf("ParseFeed error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	br := entries[0]
	if !br.Ranged() || !br.IsClosure() {
		t.Errorf("spring break entry = %+v, want ranged closure", br)
	}
	// DTEND is exclusive for all-day events: 03-22 means the break ends 03-21.
	if !br.Start.Equal(NewDate(2025, time.March, 17)) || !br.End.Equal(NewDate(2025, time.March, 21)) {
		t.Errorf("spring break span = %s..%s, want 2025-03-17..2025-03-21",
			br.Start.Format("2006-01-02"), br.End.Format("2006-01-02"))
	}

	cm := entries[1]
	if cm.Ranged() || cm.IsClosure() {
		t.Errorf("commencement entry = %+v, want single informational date", cm)
	}
	if !cm.Date.Equal(NewDate(2025, time.May, 17)) {
		t.Errorf("commencement date = %v", cm.Date)
	}
}

func TestParseFeedSkipsNamelessEvents(t *testing.T) {
	body := feedICS(
		"BEGIN:VEVENT",
		"UID:anon",
		"DTSTAMP:20250101T000000Z",
		"DTSTART;VALUE=DATE:20250317",
		"END:VEVENT",
	)
	entries, err := ParseFeed(body)
	if err != nil {
		t.Fatalf("ParseFeed error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestParseFeedEmpty(t *testing.T) {
	if _, err := ParseFeed(nil); err == nil {
		t.Error("ParseFeed(nil) = nil error, want error")
	}
}

func TestFeedFetcherCaching(t *testing.T) {
	body := feedICS(
		"BEGIN:VEVENT",
		"UID:break-1",
		"DTSTAMP:20250101T000000Z",
		"DTSTART;VALUE=DATE:20250317",
		"DTEND;VALUE=DATE:20250322",
		"SUMMARY:Spring Break - No Classes",
		"END:VEVENT",
	)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	f := NewFeedFetcher(t.TempDir())
	src := FeedSource{ID: "sp", Term: "SP2025", URL: srv.URL + "/holidays.ics"}

	res, err := f.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("first fetch error: %v", err)
	}
	if res.FromCache {
		t.Error("first fetch should not come from cache")
	}
	if len(res.Entries) != 1 {
		t.Fatalf("first fetch entries = %d, want 1", len(res.Entries))
	}

	res, err = f.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("second fetch error: %v", err)
	}
	if !res.FromCache {
		t.Error("second fetch should reuse the cached body via 304")
	}
	if len(res.Entries) != 1 {
		t.Errorf("second fetch entries = %d, want 1", len(res.Entries))
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hits = %d, want 2", got)
	}

	// Server gone: the cached body must still satisfy the fetch.
	srv.Close()
	res, err = f.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("fetch after server shutdown error: %v", err)
	}
	if !res.FromCache || len(res.Entries) != 1 {
		t.Errorf("stale fallback failed: from_cache=%v entries=%d", res.FromCache, len(res.Entries))
	}
}

func TestFeedFetcherValidation(t *testing.T) {
	f := NewFeedFetcher(t.TempDir())
	if _, err := f.Fetch(context.Background(), FeedSource{Term: "SP2025"}); err == nil {
		t.Error("empty URL should error")
	}
	if _, err := f.Fetch(context.Background(), FeedSource{URL: "http://example.invalid/x.ics"}); err == nil {
		t.Error("empty term should error")
	}
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/private.ics?token=abcd", "https://example.com/...(redacted)"},
		{"https://example.com", "https://example.com/...(redacted)"},
		{"not a url", "ics://...(redacted)"},
	}
	for _, tt := range tests {
		if got := redactURL(tt.in); got != tt.want {
			t.Errorf("redactURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
