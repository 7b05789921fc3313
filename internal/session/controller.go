// Package session runs the interactive loop: one turn at a time from
// utterance through resolution, the safety gate, execution, and the
// rendered result, plus the exit handshake with its timed close.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robotcli/robotcli/internal/action"
	"github.com/robotcli/robotcli/internal/executor"
	"github.com/robotcli/robotcli/internal/guard"
	"github.com/robotcli/robotcli/internal/llm"
	"github.com/robotcli/robotcli/internal/resolver"
)

// State is the session's current phase. Exactly one turn is ever in
// flight; the states only move forward within a turn and return to
// AwaitingInput between turns. Closing is terminal.
type State int

const (
	StateIdle State = iota
	StateAwaitingInput
	StateResolving
	StateAwaitingConfirmation
	StateExecuting
	StateClosing
)

// Turn records one completed exchange. Turns live in memory only and
// die with the session.
type Turn struct {
	ID         uuid.UUID
	Utterance  string
	Reply      string // what the assistant said (question, reply, or result summary)
	ActionKind action.Kind
	Result     *executor.Result // nil for pure conversation
	Timestamp  time.Time
}

// Options configures a Controller. Input and Output default to nothing
// useful; callers always supply them.
type Options struct {
	Input         io.Reader
	Output        io.Writer
	Resolver      *resolver.Resolver
	Gate          *guard.Gate
	Executor      *executor.Executor
	Logger        *slog.Logger
	CloseDelay    time.Duration
	HistoryWindow int
	SysContext    string // one-line host summary captured at startup
}

// Controller owns the session loop.
type Controller struct {
	in            io.Reader
	out           io.Writer
	resolver      *resolver.Resolver
	gate          *guard.Gate
	exec          *executor.Executor
	logger        *slog.Logger
	closeDelay    time.Duration
	historyWindow int
	sysContext    string

	state State
	turns []Turn
}

// New creates a Controller.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		in:            opts.Input,
		out:           opts.Output,
		resolver:      opts.Resolver,
		gate:          opts.Gate,
		exec:          opts.Executor,
		logger:        logger,
		closeDelay:    opts.CloseDelay,
		historyWindow: opts.HistoryWindow,
		sysContext:    opts.SysContext,
	}
}

// State returns the current session state. Used by tests; the loop
// itself is single-threaded.
func (c *Controller) State() State { return c.state }

// Turns returns the recorded turns.
func (c *Controller) Turns() []Turn { return c.turns }

var exitPhrases = map[string]bool{
	"exit":    true,
	"quit":    true,
	"bye":     true,
	"goodbye": true,
}

func isExitPhrase(s string) bool {
	return exitPhrases[strings.ToLower(strings.TrimSpace(s))]
}

var affirmatives = map[string]bool{
	"y":       true,
	"yes":     true,
	"sure":    true,
	"ok":      true,
	"okay":    true,
	"confirm": true,
}

func isAffirmative(s string) bool {
	return affirmatives[strings.ToLower(strings.TrimSpace(s))]
}

// Run drives the session until the user exits, input ends, or ctx is
// cancelled. Returns nil on a normal exit.
func (c *Controller) Run(ctx context.Context) error {
	lines := make(chan string)
	quit := make(chan struct{})

	// Input pump. It keeps reading while a turn is executing, which is
	// what lets a typed "quit" reach us mid-scan: the pump closes quit
	// immediately and the per-turn context watcher cancels the scan.
	go c.pump(lines, quit)

	fmt.Fprintln(c.out, "RobotCLI ready. Ask me to manage files or check on this machine. Say 'exit' to leave.")

	for {
		c.state = StateAwaitingInput
		fmt.Fprint(c.out, "> ")

		var line string
		var open bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-quit:
			return c.close(ctx)
		case line, open = <-lines:
			if !open {
				// EOF on input counts as leaving.
				return c.close(ctx)
			}
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isExitPhrase(line) {
			return c.close(ctx)
		}

		if exit := c.handleTurn(ctx, quit, lines, line); exit {
			return c.close(ctx)
		}

		// A quit queued while the turn ran wins over the next prompt.
		select {
		case <-quit:
			return c.close(ctx)
		default:
		}
	}
}

// pump reads input lines and forwards them. An exit phrase closes quit
// before the line is forwarded, so an in-flight turn sees the
// cancellation even though the loop has not read the line yet.
func (c *Controller) pump(lines chan<- string, quit chan struct{}) {
	defer close(lines)
	quitClosed := false

	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		line := scanner.Text()
		if isExitPhrase(line) && !quitClosed {
			close(quit)
			quitClosed = true
		}
		lines <- line
	}
}

// handleTurn runs one utterance end to end. The returned bool reports
// whether the session must close (exit intent or quit during the turn).
func (c *Controller) handleTurn(parent context.Context, quit <-chan struct{}, lines <-chan string, utterance string) bool {
	turnCtx, cancel := context.WithCancel(parent)
	defer cancel()

	// A queued exit cancels whatever this turn is doing.
	go func() {
		select {
		case <-quit:
			cancel()
		case <-turnCtx.Done():
		}
	}()

	c.state = StateResolving
	intent, err := c.resolver.Resolve(turnCtx, utterance, c.historyMessages(), c.sysContext)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.record(utterance, "", "", executor.Cancelled("", "cancelled"))
			return true
		}
		if errors.Is(err, resolver.ErrServiceUnavailable) {
			msg := "I can't reach the reasoning service right now. Your request wasn't lost — try again in a moment."
			fmt.Fprintln(c.out, msg)
			c.record(utterance, msg, "", nil)
			return false
		}
		fmt.Fprintln(c.out, "Something went wrong:", err)
		c.record(utterance, err.Error(), "", nil)
		return false
	}

	switch intent.Kind {
	case resolver.IntentClarify:
		fmt.Fprintln(c.out, intent.Question)
		c.record(utterance, intent.Question, action.KindConverse, nil)
		return false

	case resolver.IntentReply:
		fmt.Fprintln(c.out, intent.Reply)
		c.record(utterance, intent.Reply, action.KindConverse, nil)
		return false
	}

	act := intent.Action
	if act.Kind() == action.KindExit {
		c.record(utterance, "goodbye", action.KindExit, nil)
		return true
	}

	decision := c.gate.Check(act)
	switch decision.Verdict {
	case guard.Deny:
		res := executor.Denied(act.Kind(), decision.Reason)
		fmt.Fprintln(c.out, "I won't do that:", decision.Reason)
		c.record(utterance, decision.Reason, act.Kind(), res)
		return false

	case guard.Confirm:
		confirmed, exit := c.confirm(quit, lines, decision.Prompt)
		if !confirmed {
			res := executor.Cancelled(act.Kind(), "cancelled by user")
			fmt.Fprintln(c.out, "Okay, cancelled.")
			c.record(utterance, "cancelled", act.Kind(), res)
			return exit
		}
	}

	c.state = StateExecuting
	res := c.exec.Execute(turnCtx, act)
	c.render(res)
	c.record(utterance, res.Summary, act.Kind(), res)

	return res.Err == executor.ErrCancelled && quitRequested(quit)
}

// confirm asks the destructive-action question and reads the answer.
// Anything other than an explicit affirmative cancels. The second
// return reports a quit arriving instead of an answer.
func (c *Controller) confirm(quit <-chan struct{}, lines <-chan string, prompt string) (confirmed, exit bool) {
	c.state = StateAwaitingConfirmation
	fmt.Fprintf(c.out, "%s [y/N] ", prompt)

	select {
	case <-quit:
		return false, true
	case line, open := <-lines:
		if !open {
			return false, true
		}
		return isAffirmative(line), false
	}
}

func (c *Controller) render(res *executor.Result) {
	switch {
	case res.Success:
		fmt.Fprintln(c.out, res.Summary)
	case res.Err == executor.ErrCancelled:
		fmt.Fprintln(c.out, "Cancelled.")
	default:
		fmt.Fprintf(c.out, "That didn't work (%s): %s\n", res.Err, res.Summary)
	}
}

func (c *Controller) record(utterance, reply string, kind action.Kind, res *executor.Result) {
	c.turns = append(c.turns, Turn{
		ID:         uuid.New(),
		Utterance:  utterance,
		Reply:      reply,
		ActionKind: kind,
		Result:     res,
		Timestamp:  time.Now(),
	})
}

// historyMessages converts the recent turn window into the chat payload.
func (c *Controller) historyMessages() []llm.Message {
	turns := c.turns
	if c.historyWindow > 0 && len(turns) > c.historyWindow {
		turns = turns[len(turns)-c.historyWindow:]
	}
	var msgs []llm.Message
	for _, t := range turns {
		msgs = append(msgs, llm.Message{Role: "user", Content: t.Utterance})
		if t.Reply != "" {
			msgs = append(msgs, llm.Message{Role: "assistant", Content: t.Reply})
		}
	}
	return msgs
}

// close enters the terminal state: a farewell, a grace pause, then
// done. No input is processed past this point.
func (c *Controller) close(ctx context.Context) error {
	c.state = StateClosing
	fmt.Fprintf(c.out, "Goodbye! Closing in %d seconds...\n", int(c.closeDelay.Seconds()))

	t := time.NewTimer(c.closeDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
	return nil
}

func quitRequested(quit <-chan struct{}) bool {
	select {
	case <-quit:
		return true
	default:
		return false
	}
}
