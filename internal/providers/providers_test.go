package providers

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"openai":    KindOpenAI,
		"anthropic": KindAnthropic,
	} {
		got, err := ParseKind(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %q, got %q", in, want, got)
		}
	}

	for _, in := range []string{"ollama", "OpenAI", "OPENAI", " openai ", "anthropic\n", ""} {
		_, err := ParseKind(in)
		if !errors.Is(err, ErrUnsupportedProvider) {
			t.Fatalf("parse %q: expected unsupported provider, got %v", in, err)
		}
		var unsupported *UnsupportedProviderError
		if !errors.As(err, &unsupported) || unsupported.ID != in {
			t.Fatalf("parse %q: expected id to be kept verbatim, got %v", in, err)
		}
	}
}

func TestKindCatalogue(t *testing.T) {
	for _, k := range Kinds() {
		if k.Label() == "" || len(k.Models()) == 0 {
			t.Fatalf("kind %q has no label or models", k)
		}
	}
	models := KindOpenAI.Models()
	models[0] = "mutated"
	if KindOpenAI.Models()[0] != "gpt-4" {
		t.Fatalf("Models must return a copy")
	}
}

func TestEndpointURL(t *testing.T) {
	for _, tc := range []struct {
		base, path, want string
	}{
		{"https://api.openai.com", "/v1/chat/completions", "https://api.openai.com/v1/chat/completions"},
		{"https://proxy.local/openai/", "/v1/chat/completions", "https://proxy.local/openai/v1/chat/completions"},
		{"https://proxy.local/v1/messages", "/v1/messages", "https://proxy.local/v1/messages"},
	} {
		got, err := EndpointURL(tc.base, tc.path)
		if err != nil {
			t.Fatalf("endpoint %q: %v", tc.base, err)
		}
		if got != tc.want {
			t.Fatalf("endpoint %q: expected %q, got %q", tc.base, tc.want, got)
		}
	}
	if _, err := EndpointURL(" ", "/v1/messages"); err == nil {
		t.Fatalf("expected error for empty base")
	}
}

func TestOutcome(t *testing.T) {
	for want, err := range map[string]error{
		"success":              nil,
		"unsupported_provider": &UnsupportedProviderError{ID: "x"},
		"api_error":            fmt.Errorf("wrapped: %w", &APIError{StatusCode: 401}),
		"transport_error":      &TransportError{Err: errors.New("dial")},
		"parse_error":          &ParseError{Err: errors.New("eof")},
		"error":                errors.New("other"),
	} {
		if got := Outcome(err); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}
