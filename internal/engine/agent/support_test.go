package agent

import (
	"context"
	"errors"
	"sync"
)

// scriptedModel replies with a fixed sequence of outputs and records prompts.
type scriptedModel struct {
	mu      sync.Mutex
	replies []string
	prompts []string
	err     error
}

func (m *scriptedModel) Complete(_ context.Context, _, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "", errors.New("script exhausted")
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	return r, nil
}

// fakeTool answers from a map and counts calls.
type fakeTool struct {
	name    string
	caps    []string
	answers map[string]string
	err     error
	calls   []string
}

func (f *fakeTool) Name() string           { return f.name }
func (f *fakeTool) Description() string    { return "fake " + f.name + " lookups" }
func (f *fakeTool) Capabilities() []string { return f.caps }

func (f *fakeTool) Run(_ context.Context, input string) (string, error) {
	f.calls = append(f.calls, input)
	if f.err != nil {
		return "", f.err
	}
	return f.answers[input], nil
}
