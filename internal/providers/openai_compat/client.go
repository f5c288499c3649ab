package openai_compat

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
	DefaultBaseURL = "https://api.openai.com"
	chatPath       = "/v1/chat/completions"
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

type chatCompletionRequest struct {
	Model     string              `json:"model"`
	Messages  []providers.Message `json:"messages"`
	MaxTokens int                 `json:"max_tokens,omitempty"`
}

// Pointer fields tell a missing or null member apart from an empty one.
type chatCompletionResponse struct {
	Choices []struct {
		Message *struct {
			Role    *string `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) Chat(ctx context.Context, req providers.ChatRequest) (providers.ChatResponse, error) {
	body, endpointURL, err := c.buildPayload(req)
	if err != nil {
		return providers.ChatResponse{}, err
	}

	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	respBody, err := providers.PostJSON(ctx, c.cfg.HTTPClient, endpointURL, headers, body)
	if err != nil {
		return providers.ChatResponse{}, err
	}

	text, err := parseChatCompletions(respBody)
	if err != nil {
		return providers.ChatResponse{}, err
	}
	return providers.ChatResponse{Text: text}, nil
}

func (c *Client) buildPayload(req providers.ChatRequest) ([]byte, string, error) {
	endpointURL, err := providers.EndpointURL(c.cfg.BaseURL, chatPath)
	if err != nil {
		return nil, "", err
	}

	b, err := providers.EncodeJSON(chatCompletionRequest{
		Model:     req.Model,
		Messages:  providers.UserTurn(req.Message),
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal chat completion payload: %w", err)
	}
	return b, endpointURL, nil
}

func parseChatCompletions(body []byte) (string, error) {
	var resp chatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &providers.ParseError{Err: fmt.Errorf("chat completion response: %w", err)}
	}
	if resp.Choices == nil {
		return "", &providers.ParseError{Err: errors.New("chat completion response: missing choices")}
	}
	for i, choice := range resp.Choices {
		if choice.Message == nil || choice.Message.Role == nil || choice.Message.Content == nil {
			return "", &providers.ParseError{Err: fmt.Errorf("chat completion response: choice %d: missing message role or content", i)}
		}
	}
	if len(resp.Choices) == 0 {
		return providers.NoResponseText, nil
	}
	return *resp.Choices[0].Message.Content, nil
}
