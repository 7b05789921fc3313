package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/robotcli/robotcli/internal/config"
	"github.com/robotcli/robotcli/internal/httpkit"
)

// OpenRouterClient talks to an OpenAI-compatible chat completions API
// (OpenRouter by default). Tool call arguments arrive as a JSON-encoded
// string on the wire; they are decoded into a map at this boundary so
// the rest of the program never sees wire quirks.
type OpenRouterClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOpenRouterClient creates a client for baseURL. An empty baseURL
// falls back to the OpenRouter endpoint.
func NewOpenRouterClient(baseURL, apiKey string, logger *slog.Logger) *OpenRouterClient {
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &OpenRouterClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger.With("provider", "openrouter"),
		httpClient: httpkit.NewClient(
			// No global timeout — rely on ctx deadlines so a queued exit
			// intent can cancel a slow completion.
			httpkit.WithTimeout(0),
			httpkit.WithRetry(2, 500*time.Millisecond),
			httpkit.WithLogger(logger),
		),
	}
}

// Wire types. Arguments is a string per the OpenAI schema.

type orRequest struct {
	Model      string           `json:"model"`
	Messages   []orMessage      `json:"messages"`
	Tools      []map[string]any `json:"tools,omitempty"`
	ToolChoice string           `json:"tool_choice,omitempty"`
}

type orMessage struct {
	Role       string       `json:"role"`
	Content    string       `json:"content"`
	ToolCalls  []orToolCall `json:"tool_calls,omitempty"`
	ToolCallID string       `json:"tool_call_id,omitempty"`
	Name       string       `json:"name,omitempty"`
}

type orToolCall struct {
	ID       string `json:"id,omitempty"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type orResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Created int64  `json:"created"`
	Choices []struct {
		Index        int       `json:"index"`
		Message      orMessage `json:"message"`
		FinishReason string    `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

// Chat sends a non-streaming chat completion request.
func (c *OpenRouterClient) Chat(ctx context.Context, model string, messages []Message, tools []map[string]any) (*ChatResponse, error) {
	req := orRequest{
		Model:    model,
		Messages: toWire(messages),
		Tools:    tools,
	}
	if len(tools) > 0 {
		req.ToolChoice = "auto"
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	c.logger.Log(ctx, config.LevelTrace, "chat request", "payload", string(jsonData))

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := httpkit.ReadErrorBody(resp.Body, 4096)
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, body)
	}

	var wire orResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if wire.Error != nil {
		return nil, fmt.Errorf("API error: %s", wire.Error.Message)
	}
	if len(wire.Choices) == 0 {
		return nil, fmt.Errorf("empty response: no choices")
	}

	choice := wire.Choices[0]
	msg, err := fromWire(choice.Message)
	if err != nil {
		return nil, err
	}

	c.logger.Log(ctx, config.LevelTrace, "chat response",
		"finish_reason", choice.FinishReason,
		"tool_calls", len(msg.ToolCalls),
	)

	return &ChatResponse{
		Model:        wire.Model,
		CreatedAt:    time.Unix(wire.Created, 0),
		Message:      msg,
		Done:         true,
		InputTokens:  wire.Usage.PromptTokens,
		OutputTokens: wire.Usage.CompletionTokens,
	}, nil
}

// Ping checks if the endpoint is reachable and the key is accepted.
func (c *OpenRouterClient) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer httpkit.DrainAndClose(resp.Body, 4096)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error %d", resp.StatusCode)
	}

	return nil
}

// ListModels returns available model identifiers.
func (c *OpenRouterClient) ListModels(ctx context.Context) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := httpkit.ReadErrorBody(resp.Body, 4096)
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, body)
	}

	var result struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	names := make([]string, len(result.Data))
	for i, m := range result.Data {
		names[i] = m.ID
	}
	return names, nil
}

// toWire converts neutral messages to the OpenAI wire shape. Tool call
// arguments are re-encoded as JSON strings.
func toWire(messages []Message) []orMessage {
	out := make([]orMessage, len(messages))
	for i, m := range messages {
		wm := orMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			var wtc orToolCall
			wtc.ID = tc.ID
			wtc.Type = "function"
			wtc.Function.Name = tc.Function.Name
			args, err := json.Marshal(tc.Function.Arguments)
			if err != nil {
				args = []byte("{}")
			}
			wtc.Function.Arguments = string(args)
			wm.ToolCalls = append(wm.ToolCalls, wtc)
		}
		out[i] = wm
	}
	return out
}

// fromWire converts a wire message to the neutral shape, decoding each
// tool call's argument string. A malformed argument payload is an error:
// the caller must treat it as a failed resolution, not execute a guess.
func fromWire(wm orMessage) (Message, error) {
	msg := Message{
		Role:    wm.Role,
		Content: wm.Content,
	}
	for _, wtc := range wm.ToolCalls {
		var tc ToolCall
		tc.ID = wtc.ID
		tc.Function.Name = wtc.Function.Name
		if wtc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(wtc.Function.Arguments), &tc.Function.Arguments); err != nil {
				return Message{}, fmt.Errorf("malformed tool arguments for %s: %w", wtc.Function.Name, err)
			}
		}
		msg.ToolCalls = append(msg.ToolCalls, tc)
	}
	return msg, nil
}
