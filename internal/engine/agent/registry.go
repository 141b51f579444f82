// Package agent implements the research chat agent: lookup tools, a zero-shot
// ReAct loop over a text-completion model, and the chat session transcript.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrUnknownTool   = errors.New("tool is not registered")
	ErrNilTool       = errors.New("tool is nil")
	ErrToolNameEmpty = errors.New("tool name is empty")
)

// Tool is one capability the model can call by name with a free-text input.
type Tool interface {
	Name() string
	Description() string
	// Capabilities tags what the tool is good for, e.g. "papers" or "encyclopedia".
	Capabilities() []string
	Run(ctx context.Context, input string) (string, error)
}

// Registry stores tools by lower-cased name, keeping registration order.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds t, replacing any tool with the same name.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return ErrNilTool
	}
	key := strings.ToLower(strings.TrimSpace(t.Name()))
	if key == "" {
		return ErrToolNameEmpty
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[key]; !exists {
		r.order = append(r.order, key)
	}
	r.tools[key] = t
	return nil
}

// Lookup finds a tool by name, ignoring case and surrounding whitespace.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Tools returns every tool in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.tools[key])
	}
	return out
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	tools := r.Tools()
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name()
	}
	return names
}

// WithCapability returns the tools tagged with capability.
func (r *Registry) WithCapability(capability string) []Tool {
	var out []Tool
	for _, t := range r.Tools() {
		for _, c := range t.Capabilities() {
			if strings.EqualFold(c, capability) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// Capabilities returns the sorted union of all tool capabilities.
func (r *Registry) Capabilities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range r.Tools() {
		for _, c := range t.Capabilities() {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Describe renders "name: description" lines for the ReAct prompt.
func (r *Registry) Describe() string {
	tools := r.Tools()
	lines := make([]string, len(tools))
	for i, t := range tools {
		lines[i] = t.Name() + ": " + t.Description()
	}
	return strings.Join(lines, "\n")
}

// Execute runs the named tool.
func (r *Registry) Execute(ctx context.Context, name, input string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	t, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return t.Run(ctx, input)
}
