package ingest

import (
	"time"
)

// FeedEntry is one parsed item from a fetched feed. Ephemeral: it exists
// only during the processing pass that created it.
type FeedEntry struct {
	Title     string
	Summary   string
	Link      string
	Published time.Time
}

// Options carries the knobs of one processor instance.
type Options struct {
	UserAgent        string
	FetchTimeout     time.Duration
	FreshnessWindow  time.Duration
	MinTextLen       int
	MaxConcurrent    int
	MaxEntriesPerRun int
	FulltextEnabled  bool
	FulltextTimeout  time.Duration
	FulltextMaxBytes int64
}

func DefaultOptions() Options {
	return Options{
		UserAgent:        "riskwire/1.0",
		FetchTimeout:     30 * time.Second,
		FreshnessWindow:  3 * 24 * time.Hour,
		MinTextLen:       40,
		MaxConcurrent:    8,
		MaxEntriesPerRun: 500,
		FulltextEnabled:  true,
		FulltextTimeout:  15 * time.Second,
		FulltextMaxBytes: 512 * 1024,
	}
}

// Stats summarizes one processing run.
type Stats struct {
	FeedsProcessed int
	FeedsFailed    int
	EntriesSeen    int
	EntriesMatched int
	AlertsBuilt    int
	AlertsSaved    int
	Duration       time.Duration
}
