package registry

import (
	"net/http"

	"aichat/internal/providers"
	"aichat/internal/providers/anthropic_messages"
	"aichat/internal/providers/openai_compat"
)

type BuildOptions struct {
	Kind       string
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// Build resolves the identifier to a provider implementation. Unknown
// identifiers fail with *providers.UnsupportedProviderError; nothing is sent.
func Build(opts BuildOptions) (providers.Provider, error) {
	kind, err := providers.ParseKind(opts.Kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case providers.KindOpenAI:
		return openai_compat.New(openai_compat.Config{
			BaseURL:    opts.BaseURL,
			APIKey:     opts.APIKey,
			HTTPClient: opts.HTTPClient,
		}), nil

	case providers.KindAnthropic:
		return anthropic_messages.New(anthropic_messages.Config{
			BaseURL:    opts.BaseURL,
			APIKey:     opts.APIKey,
			HTTPClient: opts.HTTPClient,
		}), nil

	default:
		return nil, &providers.UnsupportedProviderError{ID: opts.Kind}
	}
}
