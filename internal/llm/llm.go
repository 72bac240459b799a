// Package llm is the outbound port for chat completions. The chat service
// only depends on ChatModel, so tests swap in a canned model and no network
// call ever happens in the test suite.
package llm

import "context"

type ChatModel interface {
	// Complete sends one system prompt and one user message and returns the
	// assistant's text reply.
	Complete(ctx context.Context, system, user string) (string, error)
}
