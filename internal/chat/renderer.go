// Package chat is the terminal front end of the research agent: a renderer that
// streams reasoning steps as they happen and a line-based REPL.
package chat

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"sync"

	"github.com/anatolykoptev/go_research/internal/engine"
	"github.com/anatolykoptev/go_research/internal/engine/agent"
)

const defaultPrompt = "> "

// observationPreview caps how much of a tool observation is echoed live.
const observationPreview = 400

// Renderer writes chat output. It is also an agent.EventSink, so reasoning
// steps appear while the agent is still working.
type Renderer struct {
	mu     sync.Mutex
	out    io.Writer
	prompt string
}

func NewRenderer(out io.Writer, prompt string) *Renderer {
	if out == nil {
		out = io.Discard
	}
	if prompt == "" {
		prompt = defaultPrompt
	}
	return &Renderer{out: out, prompt: prompt}
}

func (r *Renderer) ShowPrompt() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := io.WriteString(r.out, r.prompt)
	return err
}

// HidePrompt is a no-op for line-based terminals; the user's newline ends the prompt.
func (r *Renderer) HidePrompt() {}

func (r *Renderer) PrintLine(line string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := fmt.Fprintln(r.out, line)
	return err
}

// PrintMessage renders one transcript message.
func (r *Renderer) PrintMessage(m agent.Message) error {
	label := "you"
	if m.Role == agent.RoleAssistant {
		label = "assistant"
	}
	return r.PrintLine(label + ": " + m.Content)
}

// PrintSummary renders a summarizer result.
func (r *Renderer) PrintSummary(s engine.Summary) error {
	return r.PrintLine(strings.TrimRight(engine.FormatSummary(s), "\n"))
}

// Publish renders one reasoning step.
func (r *Renderer) Publish(_ context.Context, e agent.Event) error {
	var line string
	switch e.Type {
	case agent.EventThought:
		line = "  thought: " + e.Text
	case agent.EventAction:
		line = fmt.Sprintf("  action: %s[%s]", e.Tool, e.Input)
	case agent.EventObservation:
		line = "  observation: " + engine.TruncateRunes(engine.CollapseWhitespace(e.Text), observationPreview, "...")
	case agent.EventError:
		line = "  error: " + e.Text
	default:
		// The answer is printed as the assistant message.
		return nil
	}
	return r.PrintLine(line)
}

// ProviderName guesses a display name for an OpenAI-compatible base URL,
// e.g. "https://api.groq.com/openai/v1" -> "Groq".
func ProviderName(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" || net.ParseIP(u.Hostname()) != nil {
		return "LLM"
	}
	labels := strings.Split(strings.TrimPrefix(u.Hostname(), "api."), ".")
	name := labels[0]
	if len(labels) >= 2 {
		name = labels[len(labels)-2]
	}
	if name == "" || name == "localhost" {
		return "LLM"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// MissingKeyWarning asks the user for a credential.
func MissingKeyWarning(baseURL string) string {
	return fmt.Sprintf("Please enter the %s API Key", ProviderName(baseURL))
}
