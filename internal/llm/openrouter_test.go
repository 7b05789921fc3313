package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenRouterClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenRouterClient(srv.URL, "test-key", nil)
}

func TestChatToolCall(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("auth = %q", auth)
		}

		var req orRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ToolChoice != "auto" {
			t.Errorf("tool_choice = %q, want auto when tools are sent", req.ToolChoice)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"model": "test-model",
			"created": 1700000000,
			"choices": [{
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {
							"name": "delete_entry",
							"arguments": "{\"path\": \"downloads/old.txt\"}"
						}
					}]
				},
				"finish_reason": "tool_calls"
			}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5}
		}`))
	})

	tools := []map[string]any{{"type": "function"}}
	resp, err := client.Chat(context.Background(), "test-model",
		[]Message{{Role: "user", Content: "delete old.txt"}}, tools)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if len(resp.Message.ToolCalls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(resp.Message.ToolCalls))
	}
	tc := resp.Message.ToolCalls[0]
	if tc.Function.Name != "delete_entry" {
		t.Errorf("tool = %q", tc.Function.Name)
	}
	// Wire arguments arrive as a JSON string and must be a map here.
	if got := tc.Function.Arguments["path"]; got != "downloads/old.txt" {
		t.Errorf("arguments.path = %v", got)
	}
	if resp.InputTokens != 10 || resp.OutputTokens != 5 {
		t.Errorf("tokens = %d/%d", resp.InputTokens, resp.OutputTokens)
	}
}

func TestChatMalformedToolArguments(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"choices": [{
				"message": {
					"role": "assistant",
					"tool_calls": [{
						"type": "function",
						"function": {"name": "delete_entry", "arguments": "{not json"}
					}]
				}
			}]
		}`))
	})

	_, err := client.Chat(context.Background(), "m", []Message{{Role: "user", Content: "x"}}, nil)
	if err == nil {
		t.Fatal("malformed tool arguments must be an error, never a guess")
	}
	if !strings.Contains(err.Error(), "malformed tool arguments") {
		t.Errorf("error = %v", err)
	}
}

func TestChatAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "bad key"}}`))
	})

	_, err := client.Chat(context.Background(), "m", []Message{{Role: "user", Content: "x"}}, nil)
	if err == nil {
		t.Fatal("expected error on 401")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %v", err)
	}
}

func TestChatErrorBody(t *testing.T) {
	// Some providers return 200 with an error object in the body.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"message": "model overloaded"}}`))
	})

	_, err := client.Chat(context.Background(), "m", []Message{{Role: "user", Content: "x"}}, nil)
	if err == nil || !strings.Contains(err.Error(), "model overloaded") {
		t.Errorf("error = %v", err)
	}
}

func TestListModels(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"data": [{"id": "a/one"}, {"id": "b/two"}]}`))
	})

	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 || models[0] != "a/one" || models[1] != "b/two" {
		t.Errorf("models = %v", models)
	}
}

func TestToWireEncodesArguments(t *testing.T) {
	msg := Message{Role: "assistant"}
	msg.ToolCalls = []ToolCall{{ID: "c1"}}
	msg.ToolCalls[0].Function.Name = "search_files"
	msg.ToolCalls[0].Function.Arguments = map[string]any{"query": ".pdf"}

	wire := toWire([]Message{msg})
	if len(wire) != 1 || len(wire[0].ToolCalls) != 1 {
		t.Fatalf("wire = %+v", wire)
	}
	wtc := wire[0].ToolCalls[0]
	if wtc.Type != "function" {
		t.Errorf("type = %q", wtc.Type)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(wtc.Function.Arguments), &decoded); err != nil {
		t.Fatalf("arguments not JSON: %v", err)
	}
	if decoded["query"] != ".pdf" {
		t.Errorf("arguments = %v", decoded)
	}
}
