package providers

import "context"

const (
	// DefaultMaxTokens is sent with every request, for both wire formats.
	DefaultMaxTokens = 1000

	// NoResponseText is returned when a successful response carries no choices or content blocks.
	NoResponseText = "No response"

	RoleUser = "user"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model     string
	Message   string
	MaxTokens int
}

type ChatResponse struct {
	Text string
}

type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// UserTurn wraps text as the single message of a standalone exchange.
func UserTurn(text string) []Message {
	return []Message{{Role: RoleUser, Content: text}}
}
