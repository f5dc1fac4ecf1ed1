package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/riskwire/riskwire/app/resilience"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Options struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Provider is the chat-completion collaborator. Implementations are
// interchangeable; the core never depends on a single vendor's wire format.
type Provider interface {
	Chat(ctx context.Context, messages []Message, opts Options) (string, error)
}

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

func NewOpenAIClient(endpoint, model, apiKey string) *OpenAIClient {
	return &OpenAIClient{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", resilience.Classify(resilience.KindAuth, errors.New("llm client misconfigured"))
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", resilience.Classify(resilience.KindPermanent, fmt.Errorf("marshal chat payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", resilience.Classify(resilience.KindPermanent, fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", resilience.Classify(resilience.KindTimeout, err)
		}
		return "", resilience.Classify(resilience.KindNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", classifyStatus(resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", resilience.Classify(resilience.KindServer, fmt.Errorf("decode chat response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return "", resilience.Classify(resilience.KindServer, errors.New("chat response has no choices"))
	}

	return parsed.Choices[0].Message.Content, nil
}

// classifyStatus maps an HTTP status to a failure kind so the retry layer
// and breaker accounting can treat causes differently.
func classifyStatus(status int, detail string) error {
	err := fmt.Errorf("llm provider returned %d: %s", status, detail)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return resilience.Classify(resilience.KindAuth, err)
	case status == http.StatusTooManyRequests:
		return resilience.Classify(resilience.KindRateLimited, err)
	case status == http.StatusBadRequest || status == http.StatusNotFound:
		return resilience.Classify(resilience.KindPermanent, err)
	case status >= 500:
		return resilience.Classify(resilience.KindServer, err)
	default:
		return resilience.Classify(resilience.KindUnknown, err)
	}
}
