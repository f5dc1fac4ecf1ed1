package location

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChatClient is the LLM collaborator used for batched resolution. The
// resilience composition (rate limiter, circuit breaker, retry) lives behind
// this interface; the batcher only sees success or failure.
type ChatClient interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

type BatchConfig struct {
	// SizeThreshold triggers a flush as soon as this many entries queue up.
	SizeThreshold int
	// FlushInterval triggers a flush even when the queue stays small.
	FlushInterval time.Duration
	// CallTimeout bounds one LLM round trip.
	CallTimeout time.Duration
	// MaxTextLen truncates each queued text in the prompt.
	MaxTextLen int
}

func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		SizeThreshold: 10,
		FlushInterval: 15 * time.Second,
		CallTimeout:   45 * time.Second,
		MaxTextLen:    400,
	}
}

type request struct {
	id   string
	text string
	ch   chan Result
}

// PendingResolution is the future handed to a caller whose entry awaits the
// shared batch flush.
type PendingResolution struct {
	ID string
	ch <-chan Result
}

// Await blocks until the batch flush resolves this entry or the context is
// cancelled; cancellation yields a terminal llm_failed result, never a
// pending one.
func (p *PendingResolution) Await(ctx context.Context) Result {
	select {
	case result := <-p.ch:
		return result
	case <-ctx.Done():
		return llmFailedResult()
	}
}

// Batcher accumulates texts needing LLM location resolution and resolves
// them in one prompt per flush. Enqueue is non-blocking; the queue lock is
// never held across the LLM call.
type Batcher struct {
	cfg    BatchConfig
	chat   ChatClient
	enrich func(context.Context, Result) Result

	mu     sync.Mutex
	queue  []request
	closed bool

	flushMu sync.Mutex
	kick    chan struct{}
}

func NewBatcher(cfg BatchConfig, chat ChatClient, enrich func(context.Context, Result) Result) *Batcher {
	if cfg.SizeThreshold < 1 {
		cfg.SizeThreshold = 1
	}
	if enrich == nil {
		enrich = func(_ context.Context, r Result) Result { return r }
	}
	return &Batcher{
		cfg:    cfg,
		chat:   chat,
		enrich: enrich,
		kick:   make(chan struct{}, 1),
	}
}

// Enqueue adds a text to the queue and returns its future. Returns nil after
// shutdown.
func (b *Batcher) Enqueue(text string) *PendingResolution {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	req := request{id: uuid.NewString(), text: text, ch: make(chan Result, 1)}
	b.queue = append(b.queue, req)
	over := len(b.queue) >= b.cfg.SizeThreshold
	b.mu.Unlock()

	if over {
		select {
		case b.kick <- struct{}{}:
		default:
		}
	}
	return &PendingResolution{ID: req.id, ch: req.ch}
}

// Run services the queue until ctx is cancelled, then performs one final
// drain so no future is left pending forever.
func (b *Batcher) Run(ctx context.Context) {
	ticker := time.NewTicker(b.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.shutdown()
			return
		case <-ticker.C:
			b.Flush(ctx)
		case <-b.kick:
			b.Flush(ctx)
		}
	}
}

func (b *Batcher) shutdown() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	// Best-effort drain with a fresh context: the run context is already
	// cancelled at this point.
	drainCtx, cancel := context.WithTimeout(context.Background(), b.cfg.CallTimeout)
	defer cancel()
	b.Flush(drainCtx)
}

// Flush drains the current queue snapshot through one LLM call. Entries
// enqueued after the snapshot wait for the next cycle. Flushes are mutually
// exclusive; enqueues are only blocked for the queue swap itself.
func (b *Batcher) Flush(ctx context.Context) {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.mu.Lock()
	batch := b.queue
	b.queue = nil
	b.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, b.cfg.CallTimeout)
	defer cancel()

	answers, err := b.resolveBatch(callCtx, batch)
	if err != nil {
		slog.Warn("Batch location resolution failed", "batch_size", len(batch), "error", err)
	}

	resolved := 0
	for _, req := range batch {
		result, ok := answers[req.id]
		if !ok {
			req.ch <- llmFailedResult()
			continue
		}
		req.ch <- b.enrich(ctx, result)
		resolved++
	}

	slog.Debug("Location batch flushed", "batch_size", len(batch), "resolved", resolved)
}

const batchSystemPrompt = `You extract geographic locations from news snippets.
For each input object return one output object with the same "id" and the
fields "city", "country" and "region" (empty string when unknown).
Respond with a JSON array only, no prose.`

type batchItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type batchAnswer struct {
	ID      string `json:"id"`
	City    string `json:"city"`
	Country string `json:"country"`
	Region  string `json:"region"`
}

func (b *Batcher) resolveBatch(ctx context.Context, batch []request) (map[string]Result, error) {
	items := make([]batchItem, 0, len(batch))
	for _, req := range batch {
		items = append(items, batchItem{ID: req.id, Text: truncate(req.text, b.cfg.MaxTextLen)})
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}

	reply, err := b.chat.Chat(ctx, batchSystemPrompt, string(payload))
	if err != nil {
		return nil, err
	}

	answers, err := parseBatchReply(reply)
	if err != nil {
		return nil, err
	}

	results := make(map[string]Result, len(answers))
	for _, a := range answers {
		if a.ID == "" || (a.City == "" && a.Country == "") {
			continue
		}
		country := canonicalCountry(a.Country)
		if country == "" {
			country = strings.TrimSpace(a.Country)
		}
		region := a.Region
		if r := regionOf(country); r != "" {
			region = r
		}
		// newResult caps LLM-derived confidence at medium.
		results[a.ID] = newResult(MethodLLMBatch, ConfidenceMedium, strings.TrimSpace(a.City), country, region)
	}
	return results, nil
}

// parseBatchReply tolerates code fences and prose around the JSON array.
func parseBatchReply(reply string) ([]batchAnswer, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start >= 0 && end > start {
		reply = reply[start : end+1]
	}

	var answers []batchAnswer
	if err := json.Unmarshal([]byte(reply), &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
