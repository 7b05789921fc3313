package llm

import "context"

// Client is the interface the intent resolver depends on. The reasoning
// service is an untrusted, fallible collaborator: every response is
// re-validated by the caller, and any transport or decode failure is
// surfaced as an error rather than a guess.
type Client interface {
	// Chat sends a chat completion request and returns the response.
	Chat(ctx context.Context, model string, messages []Message, tools []map[string]any) (*ChatResponse, error)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}
