// Package llm abstracts the chat-completion providers that turn user
// questions into dashboard specs.
package llm

import "context"

// Provider is a chat-completion backend. Stream reports text deltas through
// onDelta as they arrive and returns the full accumulated text; providers
// that cannot stream may call onDelta once with everything.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
	Stream(ctx context.Context, system, user string, onDelta func(delta string)) (string, error)
}
