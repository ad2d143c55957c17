// Package assistant talks to the remote language model that powers the
// in-app financial copilot, falling back to canned local replies whenever the
// remote call cannot be completed.
package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dvloznov/finance-copilot/internal/intent"
	"github.com/dvloznov/finance-copilot/internal/store"
	"github.com/rs/zerolog"
)

// ErrEmptyMessage is returned when the user message is blank.
var ErrEmptyMessage = errors.New("message is empty")

// SnapshotSource supplies the state the context block is built from.
type SnapshotSource interface {
	Snapshot() store.Snapshot
}

// Reply is the assistant's answer to one message.
type Reply struct {
	Text string `json:"text"`

	// Backup is set when the reply came from the local fallback.
	Backup bool `json:"backup"`

	// Intent is the action found in Text, if any.
	Intent *intent.Intent `json:"intent,omitempty"`
}

// Options tunes the remote call.
type Options struct {
	Timeout     time.Duration
	MaxAttempts int
	BackoffBase time.Duration
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:     10 * time.Second,
		MaxAttempts: 3,
		BackoffBase: time.Second,
	}
}

// Assistant answers user messages.
type Assistant struct {
	completer Completer
	source    SnapshotSource
	opts      Options
	log       zerolog.Logger

	// sleep waits between attempts; tests replace it.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an Assistant. A nil completer makes every reply a fallback.
func New(completer Completer, source SnapshotSource, opts Options, log zerolog.Logger) *Assistant {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = def.MaxAttempts
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = def.BackoffBase
	}
	return &Assistant{
		completer: completer,
		source:    source,
		opts:      opts,
		log:       log,
		sleep:     sleepContext,
	}
}

// Ask sends message to the remote assistant together with the current
// financial context. Remote failures never surface as errors; they produce a
// fallback reply instead.
func (a *Assistant) Ask(ctx context.Context, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}

	text, err := a.complete(ctx, message)
	reply := Reply{Text: text}
	if err != nil {
		a.log.Warn().Err(err).Msg("Assistant unavailable, using backup replies")
		reply = Reply{Text: fallbackReply(message), Backup: true}
	}

	if in, ok := intent.Parse(reply.Text); ok {
		reply.Intent = &in
	}
	return reply, nil
}

func (a *Assistant) complete(ctx context.Context, message string) (string, error) {
	if a.completer == nil {
		return "", errors.New("no completer configured")
	}

	var snap store.Snapshot
	if a.source != nil {
		snap = a.source.Snapshot()
	}
	prompt := BuildPrompt(snap, message)

	var lastErr error
	for attempt := 1; attempt <= a.opts.MaxAttempts; attempt++ {
		text, err := a.attempt(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		a.log.Error().Err(err).Int("attempt", attempt).Msg("Error calling assistant")
		if !isTransient(err) || attempt == a.opts.MaxAttempts {
			break
		}

		delay := a.opts.BackoffBase * time.Duration(1<<attempt)
		if err := a.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

func (a *Assistant) attempt(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()
	return a.completer.Complete(ctx, prompt)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
