package services

import (
	"context"
	"sync"
)

// fakeCompleter returns canned content or an error and records calls.
type fakeCompleter struct {
	mu       sync.Mutex
	content  string
	err      error
	calls    int
	messages [][]Message
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, messages []Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.messages = append(f.messages, messages)
	return f.content, f.err
}

type panickingAnalyzer struct{}

func (panickingAnalyzer) Analyze(context.Context, QuoteInput) (QuoteResult, error) {
	panic("boom")
}
