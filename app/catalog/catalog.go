package catalog

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// fallbackFeeds are the major wire services, appended at lowest priority so
// a broken catalog never leaves the pipeline with nothing to read.
var fallbackFeeds = map[string]string{
	"reuters": "https://feeds.reuters.com/reuters/worldNews",
	"ap":      "https://feeds.apnews.com/rss/apf-intlnews",
	"bbc":     "https://feeds.bbci.co.uk/news/world/rss.xml",
	"afp":     "https://www.afp.com/en/rss.xml",
}

// LoadFile reads the YAML feed catalog. A missing file yields an empty
// catalog, not an error: the fallback feeds still apply.
func LoadFile(path string) (*Files, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Warn("Feed catalog file not found, relying on fallback feeds", "path", path)
		return &Files{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read feed catalog: %w", err)
	}

	var files Files
	if err := yaml.Unmarshal(data, &files); err != nil {
		return nil, fmt.Errorf("failed to parse feed catalog: %w", err)
	}
	return &files, nil
}

// Build assembles the final deduplicated spec list from the catalog, the
// environment override list and the fixed fallbacks.
func Build(files *Files, extraFeeds []string) []FeedSpec {
	var specs []FeedSpec

	for _, raw := range extraFeeds {
		specs = append(specs, FeedSpec{URL: raw, Priority: priorityEnv, Kind: KindEnv, Tag: "env"})
	}
	for city, urls := range files.Local {
		for _, raw := range urls {
			specs = append(specs, FeedSpec{URL: raw, Priority: priorityLocal, Kind: KindNative, Tag: "local:" + city})
		}
	}
	for country, urls := range files.Country {
		for _, raw := range urls {
			specs = append(specs, FeedSpec{URL: raw, Priority: priorityCountry, Kind: KindNative, Tag: "country:" + country})
		}
	}
	for _, raw := range files.Global {
		specs = append(specs, FeedSpec{URL: raw, Priority: priorityGlobal, Kind: KindNative, Tag: "global"})
	}
	for name, raw := range fallbackFeeds {
		specs = append(specs, FeedSpec{URL: raw, Priority: priorityFallback, Kind: KindFallback, Tag: "wire:" + name})
	}

	return Dedupe(specs)
}

// Load reads the catalog file from dir and assembles the final spec list,
// applying the env override list and the wire-service fallbacks.
func Load(dir, extraFeeds string) ([]FeedSpec, error) {
	files, err := LoadFile(filepath.Join(dir, "feeds.yml"))
	if err != nil {
		return nil, err
	}
	return Build(files, ParseExtraFeeds(extraFeeds)), nil
}

// ParseExtraFeeds splits the comma-separated env override list.
func ParseExtraFeeds(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var feeds []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			feeds = append(feeds, trimmed)
		}
	}
	return feeds
}

// Dedupe collapses specs sharing a normalized URL, keeping the copy with the
// lowest priority number (highest trust). Output is sorted by priority, then
// URL, for deterministic processing order.
func Dedupe(specs []FeedSpec) []FeedSpec {
	best := make(map[string]FeedSpec)
	for _, spec := range specs {
		key := NormalizeURL(spec.URL)
		if key == "" {
			slog.Warn("Dropping feed spec with unparseable URL", "url", spec.URL)
			continue
		}
		current, seen := best[key]
		if !seen || spec.Priority < current.Priority {
			best[key] = spec
		}
	}

	deduped := make([]FeedSpec, 0, len(best))
	for _, spec := range best {
		deduped = append(deduped, spec)
	}
	sort.Slice(deduped, func(i, j int) bool {
		if deduped[i].Priority != deduped[j].Priority {
			return deduped[i].Priority < deduped[j].Priority
		}
		return deduped[i].URL < deduped[j].URL
	})
	return deduped
}

// NormalizeURL strips query and fragment, lowercases scheme and host, and
// trims a trailing slash so trivially different URLs dedupe together.
func NormalizeURL(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Host == "" {
		return ""
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	normalized := parsed.String()
	return strings.TrimSuffix(normalized, "/")
}
