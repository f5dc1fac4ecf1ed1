package ingest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/riskwire/riskwire/app/alert"
	"github.com/riskwire/riskwire/app/catalog"
	"github.com/riskwire/riskwire/app/keyword"
	"github.com/riskwire/riskwire/app/location"
	"github.com/riskwire/riskwire/app/metrics"
	"github.com/riskwire/riskwire/app/store"
	"github.com/riskwire/riskwire/app/throttle"
)

// Processor runs one ingestion pass over the feed catalog: fetch, parse,
// filter, locate, persist. Feeds fan out over a bounded worker group; one
// failing feed never aborts the run.
type Processor struct {
	opts       Options
	httpClient *http.Client
	throttle   *throttle.HostThrottle
	matcher    *keyword.Matcher
	locations  *location.Engine
	batcher    *location.Batcher
	alertStore store.AlertStore
	collector  *metrics.Collector
}

func NewProcessor(opts Options, hostThrottle *throttle.HostThrottle, locations *location.Engine, batcher *location.Batcher, alertStore store.AlertStore, collector *metrics.Collector) *Processor {
	return &Processor{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.FetchTimeout},
		throttle:   hostThrottle,
		matcher:    keyword.NewMatcher(),
		locations:  locations,
		batcher:    batcher,
		alertStore: alertStore,
		collector:  collector,
	}
}

// candidate is an entry that passed dedup and relevance and now waits for its
// location to settle before becoming an alert.
type candidate struct {
	spec    catalog.FeedSpec
	entry   FeedEntry
	uuid    string
	hash    string
	text    string
	kw      keyword.MatchResult
	loc     location.Result
	pending *location.PendingResolution
}

// Run executes one full pass over the given feeds and persists the resulting
// alerts. Per-feed errors are counted, logged and swallowed; only storage
// failures surface to the caller.
func (p *Processor) Run(ctx context.Context, feeds []catalog.FeedSpec) (Stats, error) {
	started := time.Now()
	stats := Stats{}

	var mu sync.Mutex
	var candidates []candidate
	seen := make(map[string]struct{})
	entryBudget := p.opts.MaxEntriesPerRun

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.opts.MaxConcurrent)

	for _, spec := range feeds {
		spec := spec
		group.Go(func() error {
			entries, err := p.fetchEntries(groupCtx, spec)
			if err != nil {
				slog.Warn("Feed fetch failed", "url", spec.URL, "error", err)
				mu.Lock()
				stats.FeedsFailed++
				mu.Unlock()
				p.collector.Inc("feeds_failed")
				return nil
			}

			mu.Lock()
			stats.FeedsProcessed++
			stats.EntriesSeen += len(entries)
			mu.Unlock()
			p.collector.Inc("feeds_processed")
			p.collector.Add("entries_seen", int64(len(entries)))

			for _, entry := range entries {
				mu.Lock()
				if entryBudget <= 0 {
					mu.Unlock()
					break
				}
				entryBudget--
				mu.Unlock()

				cand, ok, err := p.evaluate(groupCtx, spec, entry)
				if err != nil {
					slog.Debug("Entry evaluation failed", "link", entry.Link, "error", err)
					continue
				}
				if !ok {
					continue
				}

				// The same story often arrives via several catalog feeds;
				// the content hash collapses those within one run.
				mu.Lock()
				if _, dup := seen[cand.hash]; dup {
					mu.Unlock()
					continue
				}
				seen[cand.hash] = struct{}{}
				stats.EntriesMatched++
				candidates = append(candidates, cand)
				mu.Unlock()
			}
			return nil
		})
	}
	group.Wait()

	if p.batcher != nil && len(candidates) > 0 {
		p.batcher.Flush(ctx)
	}

	alerts := p.finalize(ctx, candidates)
	stats.AlertsBuilt = len(alerts)

	if len(alerts) > 0 {
		saved, err := p.alertStore.SaveBatch(ctx, alerts)
		if err != nil {
			return stats, fmt.Errorf("failed to save alerts: %w", err)
		}
		stats.AlertsSaved = saved
		p.collector.Add("alerts_saved", int64(saved))
	}

	stats.Duration = time.Since(started)
	p.collector.Observe("ingest_run", stats.Duration)
	slog.Info("Ingestion run completed",
		"feeds", stats.FeedsProcessed,
		"failed", stats.FeedsFailed,
		"entries", stats.EntriesSeen,
		"matched", stats.EntriesMatched,
		"saved", stats.AlertsSaved,
		"duration", stats.Duration)

	return stats, nil
}

// evaluate runs the per-entry pipeline up to (but not past) location
// settlement: freshness, dedup, relevance, then a location resolution that may
// come back pending.
func (p *Processor) evaluate(ctx context.Context, spec catalog.FeedSpec, entry FeedEntry) (candidate, bool, error) {
	if !p.fresh(entry.Published) {
		return candidate{}, false, nil
	}

	source := throttle.HostOf(entry.Link)
	if source == "" {
		source = throttle.HostOf(spec.URL)
	}
	uuid := alert.UUIDFor(source, entry.Title, entry.Link)

	exists, err := p.alertStore.Exists(ctx, uuid)
	if err != nil {
		return candidate{}, false, fmt.Errorf("failed to check for duplicate: %w", err)
	}
	if exists {
		p.collector.Inc("entries_duplicate")
		return candidate{}, false, nil
	}

	text := entry.Summary
	if utf8.RuneCountInString(entry.Title+" "+text) < p.opts.MinTextLen {
		return candidate{}, false, nil
	}

	kw := p.matcher.Decide(entry.Title, text)
	if !kw.Hit && p.opts.FulltextEnabled && entry.Link != "" {
		// One retry with the full article before giving up on the entry.
		fulltext, err := p.fetchFulltext(ctx, entry.Link)
		if err != nil {
			slog.Debug("Fulltext fetch failed", "link", entry.Link, "error", err)
		} else if fulltext != "" {
			text = fulltext
			p.collector.Inc("fulltext_fetched")
			kw = p.matcher.Decide(entry.Title, text)
		}
	}
	if !kw.Hit {
		return candidate{}, false, nil
	}
	p.collector.Inc("keyword_" + string(kw.Rule))

	loc, pending := p.locations.Resolve(ctx, entry.Title+" "+text)

	return candidate{
		spec:    spec,
		entry:   entry,
		uuid:    uuid,
		hash:    ContentHash(entry.Title, entry.Link),
		text:    text,
		kw:      kw,
		loc:     loc,
		pending: pending,
	}, true, nil
}

// finalize awaits any pending location resolutions and assembles the alert
// records.
func (p *Processor) finalize(ctx context.Context, candidates []candidate) []*alert.Alert {
	alerts := make([]*alert.Alert, 0, len(candidates))
	for _, cand := range candidates {
		loc := cand.loc
		if cand.pending != nil {
			loc = cand.pending.Await(ctx)
		}
		p.collector.Inc("location_" + string(loc.Method))

		source := throttle.HostOf(cand.entry.Link)
		if source == "" {
			source = throttle.HostOf(cand.spec.URL)
		}

		blob := cand.entry.Title + " " + cand.text
		alerts = append(alerts, &alert.Alert{
			UUID:               cand.uuid,
			Title:              cand.entry.Title,
			Summary:            cand.entry.Summary,
			Snippet:            alert.FirstSentence(cand.text),
			Link:               cand.entry.Link,
			Source:             source,
			Published:          cand.entry.Published,
			Tags:               keyword.Tags(blob),
			Region:             loc.Region,
			Country:            loc.Country,
			City:               loc.City,
			LocationMethod:     loc.Method,
			LocationConfidence: loc.Confidence,
			Latitude:           loc.Latitude,
			Longitude:          loc.Longitude,
			KwRule:             cand.kw.Rule,
			KwTier:             cand.kw.Tier,
			KwKeywords:         cand.kw.Keywords,
			Language:           detectLanguage(cand.text),
			SourceKind:         string(cand.spec.Kind),
			SourcePriority:     cand.spec.Priority,
			SourceTag:          cand.spec.Tag,
		})
	}
	return alerts
}

// fetchEntries downloads and parses one feed after acquiring the host
// throttle slot.
func (p *Processor) fetchEntries(ctx context.Context, spec catalog.FeedSpec) ([]FeedEntry, error) {
	if err := p.throttle.Acquire(ctx, throttle.HostOf(spec.URL)); err != nil {
		return nil, fmt.Errorf("failed to acquire host slot: %w", err)
	}

	data, err := p.fetchFeed(ctx, spec.URL)
	if err != nil {
		return nil, err
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	entries := make([]FeedEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, FeedEntry{
			Title:     normalizeWhitespace(tagPattern.ReplaceAllString(item.Title, " ")),
			Summary:   normalizeWhitespace(tagPattern.ReplaceAllString(item.Description, " ")),
			Link:      item.Link,
			Published: publishedAt(item),
		})
	}
	return entries, nil
}

func (p *Processor) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, p.opts.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", p.opts.UserAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

// fresh reports whether the publish date falls inside the freshness window.
// Entries without a usable date count as fresh so sparse feeds are not lost.
func (p *Processor) fresh(published time.Time) bool {
	if published.IsZero() {
		return true
	}
	return time.Since(published) <= p.opts.FreshnessWindow
}

func publishedAt(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return time.Time{}
}

// ContentHash is the stable fingerprint of an entry used by operators to
// correlate alerts across databases.
func ContentHash(title, link string) string {
	key := link
	if key == "" {
		key = title
	}
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
