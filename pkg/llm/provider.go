package llm

import "context"

// Provider is a synchronous chat-completion service. Implementations return
// the full reply text for one request.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries one completion call: the conversation plus per-call
// sampling controls. A zero Temperature means the provider default.
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// SystemUser builds the common two-message conversation shape.
func SystemUser(system, user string) []Message {
	return []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}
