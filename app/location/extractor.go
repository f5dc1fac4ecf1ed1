package location

import (
	"context"
	"log/slog"
	"strings"
)

// Geocoder is the coordinate-enrichment collaborator. ok=false means
// "coordinates unknown" and is never treated as an error.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (lat float64, lon float64, ok bool)
}

type Config struct {
	VaguenessMarkers []string
	GeocodeEnabled   bool
}

// Engine resolves a best-effort location for a news text, preferring free
// deterministic tiers over paid LLM calls: dateline patterns, then the
// curated city index, then causal-clause phrasing, and only for eligible
// leftovers the shared batched LLM resolver.
type Engine struct {
	markers  []string
	geocode  bool
	geocoder Geocoder
	batcher  *Batcher
}

func NewEngine(cfg Config, geocoder Geocoder) *Engine {
	markers := cfg.VaguenessMarkers
	if len(markers) == 0 {
		markers = DefaultVaguenessMarkers
	}
	return &Engine{
		markers:  markers,
		geocode:  cfg.GeocodeEnabled && geocoder != nil,
		geocoder: geocoder,
	}
}

// SetBatcher attaches the shared LLM batching queue. Without one, eligible
// entries resolve to method none instead of waiting.
func (e *Engine) SetBatcher(b *Batcher) {
	e.batcher = b
}

// Resolve runs the deterministic tiers and, when they miss and the text
// passes the ambiguity gate, enqueues the text for batched LLM resolution.
// A non-nil PendingResolution means the returned Result is transient and the
// caller must await the real one before finalizing the entry.
func (e *Engine) Resolve(ctx context.Context, text string) (Result, *PendingResolution) {
	if result, ok := e.resolveDeterministic(text); ok {
		return e.Enrich(ctx, result), nil
	}

	if !e.eligibleForLLM(text) {
		return noneResult(), nil
	}
	if e.batcher == nil {
		return noneResult(), nil
	}

	pending := e.batcher.Enqueue(text)
	if pending == nil {
		// Batcher already shut down.
		return llmFailedResult(), nil
	}
	return pendingResult(), pending
}

func (e *Engine) resolveDeterministic(text string) (Result, bool) {
	if result, ok := extractDateline(text); ok {
		return result, true
	}

	lowered := strings.ToLower(text)
	if info, ok := lookupCity(lowered); ok {
		return newResult(MethodKnownCity, ConfidenceHigh, info.City, info.Country, regionOf(info.Country)), true
	}

	if result, ok := extractCausalClause(text); ok {
		return result, true
	}

	return Result{}, false
}

// eligibleForLLM is the ambiguity gate: spend LLM budget only on text that
// hints at a place the deterministic tiers cannot pin down.
func (e *Engine) eligibleForLLM(text string) bool {
	lowered := strings.ToLower(text)
	if hasVaguenessMarker(lowered, e.markers) {
		return true
	}
	return locationHint.MatchString(text)
}

// Enrich attaches coordinates when a city or country is present and
// geocoding is enabled. Geocoder misses degrade silently: the method and
// confidence already resolved are never touched.
func (e *Engine) Enrich(ctx context.Context, result Result) Result {
	if !e.geocode {
		return result
	}
	if result.City == "" && result.Country == "" {
		return result
	}

	query := result.City
	if result.Country != "" {
		if query != "" {
			query += ", "
		}
		query += result.Country
	}

	lat, lon, ok := e.geocoder.Geocode(ctx, query)
	if !ok {
		slog.Debug("Geocoding miss", "query", query)
		return result
	}
	result.Latitude = &lat
	result.Longitude = &lon
	return result
}
