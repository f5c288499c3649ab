package anthropic_messages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"aichat/internal/providers"
)

const (
	DefaultBaseURL = "https://api.anthropic.com"
	APIVersion     = "2023-06-01"
	messagesPath   = "/v1/messages"
)

type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

type Client struct {
	cfg Config
}

func New(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{cfg: cfg}
}

var _ providers.Provider = (*Client)(nil)

// max_tokens is required by the Messages API, so it is never omitted.
type messagesRequest struct {
	Model     string              `json:"model"`
	MaxTokens int                 `json:"max_tokens"`
	Messages  []providers.Message `json:"messages"`
}

// Pointer fields tell a missing or null member apart from an empty one.
type messagesResponse struct {
	Content []struct {
		Text *string `json:"text"`
	} `json:"content"`
}

func (c *Client) Chat(ctx context.Context, req providers.ChatRequest) (providers.ChatResponse, error) {
	body, endpointURL, err := c.buildPayload(req)
	if err != nil {
		return providers.ChatResponse{}, err
	}

	headers := map[string]string{
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": APIVersion,
	}

	respBody, err := providers.PostJSON(ctx, c.cfg.HTTPClient, endpointURL, headers, body)
	if err != nil {
		return providers.ChatResponse{}, err
	}

	text, err := parseMessages(respBody)
	if err != nil {
		return providers.ChatResponse{}, err
	}
	return providers.ChatResponse{Text: text}, nil
}

func (c *Client) buildPayload(req providers.ChatRequest) ([]byte, string, error) {
	endpointURL, err := providers.EndpointURL(c.cfg.BaseURL, messagesPath)
	if err != nil {
		return nil, "", err
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = providers.DefaultMaxTokens
	}
	b, err := providers.EncodeJSON(messagesRequest{
		Model:     req.Model,
		MaxTokens: maxTokens,
		Messages:  providers.UserTurn(req.Message),
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal messages payload: %w", err)
	}
	return b, endpointURL, nil
}

func parseMessages(body []byte) (string, error) {
	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &providers.ParseError{Err: fmt.Errorf("messages response: %w", err)}
	}
	if resp.Content == nil {
		return "", &providers.ParseError{Err: errors.New("messages response: missing content")}
	}
	for i, block := range resp.Content {
		if block.Text == nil {
			return "", &providers.ParseError{Err: fmt.Errorf("messages response: content block %d: missing text", i)}
		}
	}
	if len(resp.Content) == 0 {
		return providers.NoResponseText, nil
	}
	return *resp.Content[0].Text, nil
}
