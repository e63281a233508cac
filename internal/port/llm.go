package port

import "context"

// ChatMessage is one turn of a chat completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest carries the parameters for one chat completion round trip.
type ChatRequest struct {
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
}

// ChatCompleter abstracts a hosted LLM chat endpoint. The reply is free-form
// text; callers must not assume well-formed output.
type ChatCompleter interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}
