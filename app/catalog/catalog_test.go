package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"https://Example.com/rss?utm=1#top", "https://example.com/rss"},
		{"https://example.com/rss/", "https://example.com/rss"},
		{"HTTPS://EXAMPLE.COM/RSS", "https://example.com/RSS"},
		{"not a url", ""},
	}
	for _, tc := range cases {
		if got := NormalizeURL(tc.raw); got != tc.want {
			t.Errorf("NormalizeURL(%q): Expected %q, got %q", tc.raw, tc.want, got)
		}
	}
}

func TestDedupe_LowestPriorityWins(t *testing.T) {
	specs := []FeedSpec{
		{URL: "https://example.com/rss?session=abc", Priority: 30, Kind: KindFallback, Tag: "wire:x"},
		{URL: "https://example.com/rss", Priority: 10, Kind: KindNative, Tag: "local:paris"},
	}

	deduped := Dedupe(specs)
	if len(deduped) != 1 {
		t.Fatalf("Expected 1 spec after dedup, got %d", len(deduped))
	}
	if deduped[0].Priority != 10 {
		t.Errorf("Expected surviving spec priority 10, got %d", deduped[0].Priority)
	}
	if deduped[0].Kind != KindNative {
		t.Errorf("Expected surviving spec kind native, got %s", deduped[0].Kind)
	}
}

func TestDedupe_SortedByPriority(t *testing.T) {
	specs := []FeedSpec{
		{URL: "https://c.example.com/rss", Priority: 90},
		{URL: "https://a.example.com/rss", Priority: 10},
		{URL: "https://b.example.com/rss", Priority: 20},
	}

	deduped := Dedupe(specs)
	for i := 1; i < len(deduped); i++ {
		if deduped[i-1].Priority > deduped[i].Priority {
			t.Fatalf("Expected specs sorted by priority, got %v", deduped)
		}
	}
}

func TestBuild_IncludesFallbacksAndEnv(t *testing.T) {
	files := &Files{
		Local:  map[string][]string{"paris": {"https://paris.example.com/rss"}},
		Global: []string{"https://world.example.com/rss"},
	}

	specs := Build(files, []string{"https://override.example.com/rss"})

	kinds := make(map[Kind]int)
	for _, spec := range specs {
		kinds[spec.Kind]++
	}
	if kinds[KindEnv] != 1 {
		t.Errorf("Expected 1 env spec, got %d", kinds[KindEnv])
	}
	if kinds[KindFallback] != len(fallbackFeeds) {
		t.Errorf("Expected %d fallback specs, got %d", len(fallbackFeeds), kinds[KindFallback])
	}
	if kinds[KindNative] != 2 {
		t.Errorf("Expected 2 native specs, got %d", kinds[KindNative])
	}

	// Env overrides must sort first.
	if specs[0].Kind != KindEnv {
		t.Errorf("Expected env spec first, got %s", specs[0].Kind)
	}
}

func TestLoad_FromDirectory(t *testing.T) {
	dir := t.TempDir()
	catalog := `
local:
  paris:
    - https://paris.example.com/rss
global:
  - https://world.example.com/rss
`
	if err := os.WriteFile(filepath.Join(dir, "feeds.yml"), []byte(catalog), 0644); err != nil {
		t.Fatalf("Expected catalog file to write, got: %v", err)
	}

	specs, err := Load(dir, "https://override.example.com/rss")
	if err != nil {
		t.Fatalf("Expected load to succeed, got: %v", err)
	}

	expected := 3 + len(fallbackFeeds)
	if len(specs) != expected {
		t.Errorf("Expected %d specs, got %d", expected, len(specs))
	}
	if specs[0].Kind != KindEnv {
		t.Errorf("Expected env override first, got %s", specs[0].Kind)
	}
}

func TestLoad_MissingFileFallsBack(t *testing.T) {
	specs, err := Load(t.TempDir(), "")
	if err != nil {
		t.Fatalf("Expected missing catalog to fall back, got: %v", err)
	}
	if len(specs) != len(fallbackFeeds) {
		t.Errorf("Expected %d fallback specs, got %d", len(fallbackFeeds), len(specs))
	}
}

func TestParseExtraFeeds(t *testing.T) {
	feeds := ParseExtraFeeds(" https://a.example.com/rss , ,https://b.example.com/rss")
	if len(feeds) != 2 {
		t.Fatalf("Expected 2 feeds, got %v", feeds)
	}

	if feeds := ParseExtraFeeds("  "); feeds != nil {
		t.Errorf("Expected nil for blank value, got %v", feeds)
	}
}
