package chat

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"aichat/internal/crypto"
	"aichat/internal/metrics"
	"aichat/internal/providers"
	"aichat/internal/providers/registry"
)

// Sender is the "send a message, get a reply" contract the session drives.
type Sender interface {
	Send(ctx context.Context, message string) (string, error)
}

// Adapter binds a provider identifier, API key and model for one chat
// session. It holds no mutable state after New returns.
type Adapter struct {
	provider   string
	apiKey     string
	model      string
	httpClient *http.Client
	baseURLs   map[string]string
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Adapter)

func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) {
		if c != nil {
			a.httpClient = c
		}
	}
}

// WithBaseURL overrides the API endpoint for one provider kind.
func WithBaseURL(kind, url string) Option {
	return func(a *Adapter) {
		url = strings.TrimSpace(url)
		if url == "" {
			return
		}
		a.baseURLs[kind] = url
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(a *Adapter) {
		a.logger = l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Adapter) {
		a.metrics = m
	}
}

// New performs no validation and no I/O. An unknown provider is reported by
// the first Send.
func New(provider, apiKey, model string, opts ...Option) *Adapter {
	a := &Adapter{
		provider:   provider,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
		baseURLs:   map[string]string{},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Provider() string { return a.provider }

func (a *Adapter) Model() string { return a.model }

// Send issues exactly one request to the provider and returns its reply text.
func (a *Adapter) Send(ctx context.Context, message string) (string, error) {
	start := time.Now()
	text, err := a.send(ctx, message)
	outcome := providers.Outcome(err)
	a.metrics.ObserveChat(metricLabel(a.provider), outcome, time.Since(start))

	ev := a.logger.Debug().
		Str("provider", a.provider).
		Str("model", a.model).
		Str("outcome", outcome).
		Dur("took", time.Since(start))
	if err != nil {
		ev = ev.Str("error", crypto.Redact(err.Error(), a.apiKey))
	}
	ev.Msg("chat exchange finished")
	return text, err
}

func (a *Adapter) send(ctx context.Context, message string) (string, error) {
	p, err := registry.Build(registry.BuildOptions{
		Kind:       a.provider,
		BaseURL:    a.baseURLs[a.provider],
		APIKey:     a.apiKey,
		HTTPClient: a.httpClient,
	})
	if err != nil {
		return "", err
	}

	resp, err := p.Chat(ctx, providers.ChatRequest{
		Model:     a.model,
		Message:   message,
		MaxTokens: providers.DefaultMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// metricLabel keeps the provider label within the closed set of kinds.
func metricLabel(provider string) string {
	if k, err := providers.ParseKind(provider); err == nil {
		return k.String()
	}
	return "unsupported"
}
