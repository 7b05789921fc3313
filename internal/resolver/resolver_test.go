package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/robotcli/robotcli/internal/action"
	"github.com/robotcli/robotcli/internal/llm"
	"github.com/robotcli/robotcli/internal/paths"
)

// fakeClient returns a scripted response (or error) and records the
// request it received.
type fakeClient struct {
	resp *llm.ChatResponse
	err  error

	gotModel    string
	gotMessages []llm.Message
	gotTools    []map[string]any
}

func (f *fakeClient) Chat(ctx context.Context, model string, messages []llm.Message, tools []map[string]any) (*llm.ChatResponse, error) {
	f.gotModel = model
	f.gotMessages = messages
	f.gotTools = tools
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.err }

func toolCall(name string, args map[string]any) llm.ToolCall {
	var tc llm.ToolCall
	tc.ID = "call_1"
	tc.Function.Name = name
	tc.Function.Arguments = args
	return tc
}

func newResolver(t *testing.T, client llm.Client) *Resolver {
	t.Helper()
	scope, err := paths.New(t.TempDir())
	if err != nil {
		t.Fatalf("paths.New: %v", err)
	}
	return New(client, "test-model", scope, nil)
}

func TestResolveAction(t *testing.T) {
	fake := &fakeClient{resp: &llm.ChatResponse{
		Message: llm.Message{
			Role:      "assistant",
			ToolCalls: []llm.ToolCall{toolCall("delete_entry", map[string]any{"path": "old.txt"})},
		},
	}}
	r := newResolver(t, fake)

	intent, err := r.Resolve(context.Background(), "delete old.txt", nil, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if intent.Kind != IntentAction {
		t.Fatalf("Kind = %v, want IntentAction", intent.Kind)
	}
	if intent.Action.Kind() != action.KindDeleteEntry {
		t.Errorf("action = %v", intent.Action.Kind())
	}

	// The request must carry the tool catalog and the system prompt.
	if len(fake.gotTools) == 0 {
		t.Error("no tools advertised")
	}
	if fake.gotModel != "test-model" {
		t.Errorf("model = %q", fake.gotModel)
	}
	if len(fake.gotMessages) < 2 || fake.gotMessages[0].Role != "system" {
		t.Errorf("messages = %+v", fake.gotMessages)
	}
}

func TestResolveInvalidToolBecomesClarification(t *testing.T) {
	// The service asks for a scope escape; resolution must not execute
	// a guess, it must come back as a question.
	fake := &fakeClient{resp: &llm.ChatResponse{
		Message: llm.Message{
			Role:      "assistant",
			ToolCalls: []llm.ToolCall{toolCall("delete_entry", map[string]any{"path": "../../etc/passwd"})},
		},
	}}
	r := newResolver(t, fake)

	intent, err := r.Resolve(context.Background(), "delete passwd", nil, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if intent.Kind != IntentClarify {
		t.Fatalf("Kind = %v, want IntentClarify", intent.Kind)
	}
	if intent.Question == "" {
		t.Error("clarification without a question")
	}
}

func TestResolveMultipleToolCallsAmbiguous(t *testing.T) {
	fake := &fakeClient{resp: &llm.ChatResponse{
		Message: llm.Message{
			Role: "assistant",
			ToolCalls: []llm.ToolCall{
				toolCall("delete_entry", map[string]any{"path": "a"}),
				toolCall("delete_entry", map[string]any{"path": "b"}),
			},
		},
	}}
	r := newResolver(t, fake)

	intent, err := r.Resolve(context.Background(), "delete a and b", nil, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if intent.Kind != IntentClarify {
		t.Errorf("Kind = %v, want IntentClarify for multiple tool calls", intent.Kind)
	}
}

func TestResolvePlainReply(t *testing.T) {
	fake := &fakeClient{resp: &llm.ChatResponse{
		Message: llm.Message{Role: "assistant", Content: "Hello! How can I help?"},
	}}
	r := newResolver(t, fake)

	intent, err := r.Resolve(context.Background(), "hi", nil, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if intent.Kind != IntentReply {
		t.Fatalf("Kind = %v, want IntentReply", intent.Kind)
	}
	if intent.Reply != "Hello! How can I help?" {
		t.Errorf("Reply = %q", intent.Reply)
	}
}

func TestResolveEmptyReplyAsksAgain(t *testing.T) {
	fake := &fakeClient{resp: &llm.ChatResponse{
		Message: llm.Message{Role: "assistant", Content: "   "},
	}}
	r := newResolver(t, fake)

	intent, err := r.Resolve(context.Background(), "mumble", nil, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if intent.Kind != IntentClarify {
		t.Errorf("Kind = %v, want IntentClarify for empty content", intent.Kind)
	}
}

func TestResolveServiceUnavailable(t *testing.T) {
	fake := &fakeClient{err: errors.New("connection refused")}
	r := newResolver(t, fake)

	_, err := r.Resolve(context.Background(), "list files", nil, "")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("error = %v, want ErrServiceUnavailable", err)
	}
}

func TestResolveHistoryWindowForwarded(t *testing.T) {
	fake := &fakeClient{resp: &llm.ChatResponse{
		Message: llm.Message{Role: "assistant", Content: "ok"},
	}}
	r := newResolver(t, fake)

	history := []llm.Message{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	if _, err := r.Resolve(context.Background(), "and now?", history, "CPU 12%"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// system + 2 history + current utterance
	if len(fake.gotMessages) != 4 {
		t.Fatalf("got %d messages, want 4", len(fake.gotMessages))
	}
	if fake.gotMessages[1].Content != "earlier question" {
		t.Errorf("history not forwarded: %+v", fake.gotMessages)
	}
	if fake.gotMessages[3].Content != "and now?" {
		t.Errorf("utterance not last: %+v", fake.gotMessages)
	}
}
