package term

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/log"
)

// FeedSource is a registrar-published holiday feed: an ICS endpoint whose
// events are imported as HolidayEntry values for one term.
type FeedSource struct {
	// ID is an internal identifier used for logging and cache keys.
	ID string
	// Term is the term code the feed's entries belong to.
	Term string
	// URL is the ICS endpoint.
	URL string
}

// FeedResult is the outcome of fetching a single feed.
type FeedResult struct {
	Source    FeedSource
	Entries   []HolidayEntry
	FromCache bool // true if the cached body was reused (304 or network failure)
}

// feedCacheEntry is the on-disk cache record for one feed URL. The body
// is stored inline so a single file holds everything needed for a
// stale-on-error fallback.
type feedCacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
	Body         []byte    `json:"body"`
}

// FeedFetcher fetches holiday feeds with ETag / Last-Modified caching.
// When a feed is unreachable it falls back to the last cached body, so a
// registrar outage never empties an already-known holiday calendar.
type FeedFetcher struct {
	client   *http.Client
	cacheDir string
}

// NewFeedFetcher creates a FeedFetcher caching under cacheDir.
func NewFeedFetcher(cacheDir string) *FeedFetcher {
	if cacheDir == "" {
		cacheDir = "./var/feed-cache"
	}
	return &FeedFetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		cacheDir: cacheDir,
	}
}

// FetchAll fetches every source. Errors for individual feeds are logged
// and returned alongside the successful results.
func (f *FeedFetcher) FetchAll(ctx context.Context, sources []FeedSource) ([]FeedResult, []error) {
	results := make([]FeedResult, 0, len(sources))
	var errs []error

	for _, src := range sources {
		res, err := f.Fetch(ctx, src)
		if err != nil {
			errs = append(errs, err)
			appLog.Error("holiday feed fetch failed", err, "id", src.ID, "url", redactURL(src.URL))
			continue
		}
		results = append(results, res)
	}
	return results, errs
}

// Fetch fetches a single feed, honoring conditional request headers from
// the cache, and parses the body into holiday entries.
func (f *FeedFetcher) Fetch(ctx context.Context, src FeedSource) (FeedResult, error) {
	if src.URL == "" {
		return FeedResult{}, errors.New("feed source URL is empty")
	}
	if src.Term == "" {
		return FeedResult{}, errors.New("feed source term is empty")
	}

	cached, _ := f.loadCache(src.URL)

	body, fromCache, err := f.fetchBody(ctx, src, cached)
	if err != nil {
		return FeedResult{}, err
	}

	entries, err := ParseFeed(body)
	if err != nil {
		return FeedResult{}, err
	}

	appLog.Info("holiday feed loaded",
		"id", src.ID,
		"term", src.Term,
		"url", redactURL(src.URL),
		"entries", len(entries),
		"from_cache", fromCache,
	)

	return FeedResult{Source: src, Entries: entries, FromCache: fromCache}, nil
}

func (f *FeedFetcher) fetchBody(ctx context.Context, src FeedSource, cached *feedCacheEntry) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, false, err
	}
	if cached != nil {
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if cached != nil && len(cached.Body) > 0 {
			appLog.Warn("holiday feed unreachable, using cached body", "id", src.ID, "url", redactURL(src.URL))
			return cached.Body, true, nil
		}
		return nil, false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, false, readErr
		}
		entry := feedCacheEntry{
			URL:          src.URL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			UpdatedAt:    time.Now().UTC(),
			Body:         body,
		}
		if err := f.saveCache(entry); err != nil {
			// The fresh body is still usable even if caching it failed.
			appLog.Error("holiday feed cache save failed", err, "id", src.ID)
		}
		return body, false, nil

	case http.StatusNotModified:
		if cached == nil || len(cached.Body) == 0 {
			return nil, false, errors.New("received 304 Not Modified but no cached body available")
		}
		return cached.Body, true, nil

	default:
		if cached != nil && len(cached.Body) > 0 {
			appLog.Warn("holiday feed returned non-OK status, using cached body",
				"id", src.ID, "status", resp.StatusCode)
			return cached.Body, true, nil
		}
		return nil, false, errors.New("holiday feed fetch: " + resp.Status)
	}
}

func (f *FeedFetcher) cacheFileForURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8])+".json")
}

func (f *FeedFetcher) loadCache(url string) (*feedCacheEntry, error) {
	data, err := os.ReadFile(f.cacheFileForURL(url))
	if err != nil {
		return nil, err
	}
	var entry feedCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	if entry.URL != url {
		// Hash collision or stale file from another deployment; ignore.
		return nil, nil
	}
	return &entry, nil
}

func (f *FeedFetcher) saveCache(entry feedCacheEntry) error {
	if err := os.MkdirAll(f.cacheDir, 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(&entry)
	if err != nil {
		return err
	}
	return os.WriteFile(f.cacheFileForURL(entry.URL), data, 0o600)
}

// ParseFeed parses an ICS payload into holiday entries. Each VEVENT
// becomes one entry: its SUMMARY is the holiday name, and its date span
// collapses to a single date or an inclusive range. All-day events use
// the iCalendar convention of an exclusive DTEND.
func ParseFeed(body []byte) ([]HolidayEntry, error) {
	if len(body) == 0 {
		return nil, errors.New("empty feed body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	entries := make([]HolidayEntry, 0)
	for _, ve := range cal.Events() {
		entry, ok := feedEntryFromEvent(ve)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func feedEntryFromEvent(ve *ical.VEvent) (HolidayEntry, bool) {
	var name string
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		name = p.Value
	}
	if name == "" {
		return HolidayEntry{}, false
	}

	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil {
		return HolidayEntry{}, false
	}
	start, allDay, err := parseFeedTime(startProp.Value)
	if err != nil {
		return HolidayEntry{}, false
	}

	end := start
	if endProp := ve.GetProperty(ical.ComponentPropertyDtEnd); endProp != nil {
		if e, endAllDay, err := parseFeedTime(endProp.Value); err == nil {
			end = e
			if allDay || endAllDay {
				// Exclusive all-day DTEND: the last covered day is the one before.
				end = end.AddDate(0, 0, -1)
			}
		}
	}

	startDay := DateOnly(start)
	endDay := DateOnly(end)
	if endDay.Before(startDay) {
		endDay = startDay
	}

	if SameDay(startDay, endDay) {
		return HolidayEntry{Name: name, Date: startDay}, true
	}
	return HolidayEntry{Name: name, Start: startDay, End: endDay}, true
}

// parseFeedTime parses the basic ICS date / date-time value forms. The
// second return reports whether the value was date-only (all-day).
func parseFeedTime(v string) (time.Time, bool, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false, errors.New("empty time value")
	}

	// UTC form, e.g. 20250317T090000Z
	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse("20060102T150405Z", v)
		return t, false, err
	}

	// Floating date-time, e.g. 20250317T090000
	if strings.Contains(v, "T") {
		t, err := time.ParseInLocation("20060102T150405", v, time.UTC)
		return t, false, err
	}

	// Date-only (all-day), e.g. 20250317
	t, err := time.ParseInLocation("20060102", v, time.UTC)
	return t, true, err
}

// redactURL hides path and query of a feed URL for logging; feed URLs
// commonly embed access tokens.
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := strings.Index(u, "://")
	if i < 0 {
		return "ics://...(redacted)"
	}
	rest := u[i+3:]
	j := strings.IndexByte(rest, '/')
	if j < 0 {
		return u + redactedSuffix
	}
	return u[:i+3+j] + redactedSuffix
}
