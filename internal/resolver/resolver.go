// Package resolver turns a free-form user utterance into exactly one
// of: a validated action, a clarification question, or a plain
// conversational reply. The reasoning service proposes; the validator
// disposes — nothing the service says is trusted until it parses.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/robotcli/robotcli/internal/action"
	"github.com/robotcli/robotcli/internal/llm"
	"github.com/robotcli/robotcli/internal/paths"
)

// ErrServiceUnavailable reports that the reasoning service could not be
// reached or returned something undecodable. The turn that hit it is
// preserved; the session stays alive.
var ErrServiceUnavailable = errors.New("reasoning service unavailable")

// IntentKind discriminates the three resolution outcomes.
type IntentKind int

const (
	// IntentAction carries a schema-valid action ready for the gate.
	IntentAction IntentKind = iota
	// IntentClarify carries a question the user must answer first.
	IntentClarify
	// IntentReply carries a plain conversational answer.
	IntentReply
)

// Intent is the outcome of resolving one utterance. Exactly one of
// Action, Question, or Reply is populated, per Kind.
type Intent struct {
	Kind     IntentKind
	Action   action.Action
	Question string
	Reply    string
}

// Resolver resolves utterances through an llm.Client.
type Resolver struct {
	client llm.Client
	model  string
	scope  *paths.Scope
	logger *slog.Logger
}

// New creates a Resolver.
func New(client llm.Client, model string, scope *paths.Scope, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{client: client, model: model, scope: scope, logger: logger}
}

// Resolve sends the utterance with a bounded history window and the
// host context line, and classifies the reply. history must already be
// trimmed to the configured window; sysContext may be empty.
func (r *Resolver) Resolve(ctx context.Context, utterance string, history []llm.Message, sysContext string) (*Intent, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: r.systemPrompt(sysContext)})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: utterance})

	resp, err := r.client.Chat(ctx, r.model, messages, action.Specs())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		r.logger.Warn("chat request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	calls := resp.Message.ToolCalls
	switch {
	case len(calls) > 1:
		// More than one proposed action in a single reply is treated
		// as ambiguity, never executed in sequence.
		names := make([]string, len(calls))
		for i, c := range calls {
			names[i] = c.Function.Name
		}
		r.logger.Debug("ambiguous resolution", "tools", names)
		return &Intent{
			Kind:     IntentClarify,
			Question: "I can only do one thing at a time. Which should I do first: " + strings.Join(names, " or ") + "?",
		}, nil

	case len(calls) == 1:
		call := calls[0]
		act, err := action.Parse(call.Function.Name, call.Function.Arguments, r.scope)
		if err != nil {
			var verr *action.ValidationError
			if errors.As(err, &verr) {
				r.logger.Debug("invalid action from service", "tool", call.Function.Name, "reason", verr.Reason)
				return &Intent{
					Kind:     IntentClarify,
					Question: fmt.Sprintf("I couldn't act on that (%s). Could you rephrase?", verr.Reason),
				}, nil
			}
			return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
		}
		return &Intent{Kind: IntentAction, Action: act}, nil

	default:
		reply := strings.TrimSpace(resp.Message.Content)
		if reply == "" {
			return &Intent{
				Kind:     IntentClarify,
				Question: "I didn't catch that. What would you like me to do?",
			}, nil
		}
		return &Intent{Kind: IntentReply, Reply: reply}, nil
	}
}

func (r *Resolver) systemPrompt(sysContext string) string {
	var b strings.Builder
	b.WriteString("You are RobotCLI, a helpful assistant living in the user's terminal. ")
	b.WriteString("You manage files and check system health using the provided tools.\n\n")
	fmt.Fprintf(&b, "All file operations are restricted to %s and its subfolders. ", r.scope.Root())
	b.WriteString("Folder names like downloads, documents, desktop, pictures, music, and videos refer to folders under that root.\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Call at most one tool per reply. If a request needs several steps, ask which to do first.\n")
	b.WriteString("- If a request is ambiguous, ask a short clarifying question instead of guessing.\n")
	b.WriteString("- Deleting only ever moves things to the trash.\n")
	b.WriteString("- When the user says goodbye or wants to stop, call the exit tool.\n")
	b.WriteString("- For anything else, answer briefly and plainly.\n")
	if sysContext != "" {
		b.WriteString("\nHost at session start: ")
		b.WriteString(sysContext)
		b.WriteString("\n")
	}
	return b.String()
}
