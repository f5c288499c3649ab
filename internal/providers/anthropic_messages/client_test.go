package anthropic_messages

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"aichat/internal/providers"
)

func TestBuildPayloadMessages(t *testing.T) {
	c := New(Config{APIKey: "k"})

	body, endpoint, err := c.buildPayload(providers.ChatRequest{
		Model:     "claude-3-haiku-20240307",
		Message:   "hello",
		MaxTokens: providers.DefaultMaxTokens,
	})
	if err != nil {
		t.Fatalf("build payload: %v", err)
	}
	if endpoint != "https://api.anthropic.com/v1/messages" {
		t.Fatalf("unexpected endpoint %q", endpoint)
	}
	want := `{"model":"claude-3-haiku-20240307","max_tokens":1000,"messages":[{"role":"user","content":"hello"}]}`
	if string(body) != want {
		t.Fatalf("unexpected body\n got: %s\nwant: %s", body, want)
	}
}

func TestBuildPayloadAlwaysCarriesMaxTokens(t *testing.T) {
	c := New(Config{})
	body, _, err := c.buildPayload(providers.ChatRequest{Model: "m", Message: "x"})
	if err != nil {
		t.Fatalf("build payload: %v", err)
	}
	want := `{"model":"m","max_tokens":1000,"messages":[{"role":"user","content":"x"}]}`
	if string(body) != want {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestChatSendsHeadersAndParsesFirstBlock(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "k" {
			t.Errorf("unexpected x-api-key %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != "2023-06-01" {
			t.Errorf("unexpected anthropic-version %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("authorization header must not be sent, got %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected content type %q", got)
		}
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"id":"msg_1","content":[{"type":"text","text":"hey"},{"type":"text","text":"later"}]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, APIKey: "k", HTTPClient: srv.Client()})
	resp, err := c.Chat(context.Background(), providers.ChatRequest{Model: "claude-3-opus-20240229", Message: "hello", MaxTokens: 1000})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Text != "hey" {
		t.Fatalf("expected first content block, got %q", resp.Text)
	}
	if gotBody != `{"model":"claude-3-opus-20240229","max_tokens":1000,"messages":[{"role":"user","content":"hello"}]}` {
		t.Fatalf("unexpected request body %s", gotBody)
	}
}

func TestChatEmptyContentReturnsPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
	resp, err := c.Chat(context.Background(), providers.ChatRequest{Model: "m", Message: "hello"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Text != providers.NoResponseText {
		t.Fatalf("expected placeholder, got %q", resp.Text)
	}
}

func TestChatNonSuccessReturnsRawBody(t *testing.T) {
	body := `{"type":"error","error":{"type":"overloaded_error"}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(529)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := c.Chat(context.Background(), providers.ChatRequest{Model: "m", Message: "hello"})
	var apiErr *providers.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Body != body {
		t.Fatalf("unexpected body %q", apiErr.Body)
	}
	if err.Error() != "API Error: "+body {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestChatMalformedJSONIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := c.Chat(context.Background(), providers.ChatRequest{Model: "m", Message: "hello"})
	var parseErr *providers.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestChatUnreachableIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(Config{BaseURL: url})
	_, err := c.Chat(context.Background(), providers.ChatRequest{Model: "m", Message: "hello"})
	var transportErr *providers.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestChatUnexpectedShapeIsParseError(t *testing.T) {
	for name, body := range map[string]string{
		"empty object":   `{}`,
		"null":           `null`,
		"error envelope": `{"type":"error","error":{"type":"invalid_request_error"}}`,
		"null content":   `{"content":null}`,
		"empty block":    `{"content":[{}]}`,
		"null block":     `{"content":[null]}`,
		"null text":      `{"content":[{"type":"text","text":null}]}`,
		"bad later item": `{"content":[{"type":"text","text":"hi"},{"type":"tool_use"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			c := New(Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
			resp, err := c.Chat(context.Background(), providers.ChatRequest{Model: "m", Message: "hello"})
			var parseErr *providers.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got text=%q err=%v", resp.Text, err)
			}
		})
	}
}
