package geo

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client resolves free-text locations to coordinates through a
// Nominatim-compatible search endpoint, with a redis cache in front so
// repeated city/country pairs cost one upstream call. Every failure path
// degrades to "coordinates unknown"; this collaborator never returns errors
// to the pipeline.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	cache      *redis.Client
	cacheTTL   time.Duration
}

func NewClient(baseURL, userAgent string, cache *redis.Client) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:    cache,
		cacheTTL: 7 * 24 * time.Hour,
	}
}

type cachedPoint struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Found bool    `json:"found"`
}

// Geocode implements the location engine's Geocoder collaborator.
func (c *Client) Geocode(ctx context.Context, query string) (float64, float64, bool) {
	if query == "" {
		return 0, 0, false
	}

	if point, ok := c.cacheGet(ctx, query); ok {
		return point.Lat, point.Lon, point.Found
	}

	point := c.lookup(ctx, query)
	c.cacheSet(ctx, query, point)
	return point.Lat, point.Lon, point.Found
}

func (c *Client) lookup(ctx context.Context, query string) cachedPoint {
	endpoint := c.baseURL + "/search?format=json&limit=1&q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return cachedPoint{}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("Geocoding request failed", "query", query, "error", err)
		return cachedPoint{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("Geocoding non-OK status", "query", query, "status", resp.StatusCode)
		return cachedPoint{}
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil || len(results) == 0 {
		return cachedPoint{}
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return cachedPoint{}
	}
	return cachedPoint{Lat: lat, Lon: lon, Found: true}
}

func (c *Client) cacheGet(ctx context.Context, query string) (cachedPoint, bool) {
	if c.cache == nil {
		return cachedPoint{}, false
	}

	raw, err := c.cache.Get(ctx, cacheKey(query)).Result()
	if err == redis.Nil {
		return cachedPoint{}, false
	}
	if err != nil {
		slog.Debug("Geocode cache read failed", "error", err)
		return cachedPoint{}, false
	}

	var point cachedPoint
	if err := json.Unmarshal([]byte(raw), &point); err != nil {
		return cachedPoint{}, false
	}
	return point, true
}

// cacheSet stores hits and misses alike: a location the upstream does not
// know stays unknown for the TTL instead of being re-asked every run.
func (c *Client) cacheSet(ctx context.Context, query string, point cachedPoint) {
	if c.cache == nil {
		return
	}

	data, err := json.Marshal(point)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, cacheKey(query), data, c.cacheTTL).Err(); err != nil {
		slog.Debug("Geocode cache write failed", "error", err)
	}
}

func cacheKey(query string) string {
	return "riskwire:geo:" + query
}
