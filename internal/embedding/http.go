package embedding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/actuallystonmai/video-recommendation-service/internal/logging"
	"github.com/actuallystonmai/video-recommendation-service/internal/metrics"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "text-embedding-3-large"
	tripAfter      = 5
)

type HTTPConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	RPS     float64
	Burst   int
	Timeout time.Duration
}

// HTTPProvider calls an OpenAI-compatible /embeddings endpoint.
// Requests are throttled and guarded by a circuit breaker.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]float32]
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func NewHTTPProvider(cfg HTTPConfig) *HTTPProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[[]float32](gobreaker.Settings{
		Name:        "embedding",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfter
		},
		IsSuccessful: providerHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("embedding circuit state changed")
		},
	})

	return &HTTPProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		breaker: breaker,
	}
}

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("embedding status %d", e.code) }

// providerHealthy reports whether err leaves the provider's health intact.
// Caller cancellation and request-level 4xx responses do not count against
// the breaker; 408 and 429 do.
func providerHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code < 500 && se.code != http.StatusRequestTimeout && se.code != http.StatusTooManyRequests
	}
	return false
}

// Model names the embedding model, used to namespace cached vectors.
func (p *HTTPProvider) Model() string { return p.model }

func (p *HTTPProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if p.apiKey == "" || strings.TrimSpace(text) == "" {
		metrics.IncEmbedding("unavailable")
		return nil, ErrUnavailable
	}
	if err := p.limiter.Wait(ctx); err != nil {
		metrics.IncEmbedding("error")
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrUnavailable, err)
	}

	vec, err := p.breaker.Execute(func() ([]float32, error) {
		return p.request(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.IncEmbedding("unavailable")
		} else {
			metrics.IncEmbedding("error")
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	metrics.IncEmbedding("ok")
	return vec, nil
}

func (p *HTTPProvider) request(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: p.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &statusError{code: resp.StatusCode}
	}

	var out embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, errors.New("empty embedding response")
	}
	return out.Data[0].Embedding, nil
}
