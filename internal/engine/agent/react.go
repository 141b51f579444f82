package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go_research/internal/engine"
)

var (
	ErrMissingModel = errors.New("model is required")
	ErrMissingTools = errors.New("tool registry is required")
	ErrMaxSteps     = errors.New("agent stopped after reaching the step limit")
)

const (
	finalAnswerMarker = "Final Answer:"
	observationMarker = "\nObservation:"
)

// actionRe matches "Action: <tool>" followed by "Action Input: <input>".
var actionRe = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)

// step is one parsed model reply.
type step struct {
	thought string
	tool    string
	input   string
	answer  string
	final   bool
}

var errFormat = errors.New("could not parse model output")

// parseReply reads a zero-shot ReAct reply into an action or a final answer.
func parseReply(text string) (step, error) {
	hasFinal := strings.Contains(text, finalAnswerMarker)
	m := actionRe.FindStringSubmatch(text)

	switch {
	case m != nil && hasFinal:
		return step{}, fmt.Errorf("%w: both a final answer and an action", errFormat)
	case m != nil:
		idx := actionRe.FindStringIndex(text)
		return step{
			thought: strings.TrimSpace(text[:idx[0]]),
			tool:    strings.TrimSpace(m[1]),
			input:   strings.Trim(strings.TrimSpace(m[2]), `"`),
		}, nil
	case hasFinal:
		idx := strings.LastIndex(text, finalAnswerMarker)
		return step{
			thought: strings.TrimSpace(text[:idx]),
			answer:  strings.TrimSpace(text[idx+len(finalAnswerMarker):]),
			final:   true,
		}, nil
	default:
		return step{}, fmt.Errorf("%w: no action or final answer", errFormat)
	}
}

// Agent runs a zero-shot ReAct loop: the model picks a tool, the tool's output
// becomes the next observation, until the model gives a final answer.
type Agent struct {
	llm      engine.Completer
	tools    *Registry
	events   EventSink
	maxSteps int
}

// New builds an agent. A nil sink discards events; maxSteps <= 0 uses the configured limit.
func New(llm engine.Completer, tools *Registry, events EventSink, maxSteps int) (*Agent, error) {
	if llm == nil {
		return nil, fmt.Errorf("new agent: %w", ErrMissingModel)
	}
	if tools == nil {
		return nil, fmt.Errorf("new agent: %w", ErrMissingTools)
	}
	if events == nil {
		events = noopSink{}
	}
	if maxSteps <= 0 {
		maxSteps = engine.Cfg.AgentMaxSteps
	}
	if maxSteps <= 0 {
		maxSteps = engine.DefaultAgentMaxSteps
	}
	return &Agent{llm: llm, tools: tools, events: events, maxSteps: maxSteps}, nil
}

// Run answers question. Every step is published to the event sink as it happens.
func (a *Agent) Run(ctx context.Context, question string) (string, error) {
	engine.IncrAgentRuns()
	runID := uuid.NewString()

	answer, err := a.run(ctx, runID, question)
	if err != nil {
		engine.IncrAgentErrors()
		a.publish(ctx, Event{RunID: runID, Type: EventError, Text: err.Error()})
		return "", err
	}
	return answer, nil
}

func (a *Agent) run(ctx context.Context, runID, question string) (string, error) {
	names := strings.Join(a.tools.Names(), ", ")
	descriptions := a.tools.Describe()
	var scratchpad strings.Builder

	for n := 1; n <= a.maxSteps; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		prompt := fmt.Sprintf(engine.ReactPrompt, descriptions, names, question, scratchpad.String())
		reply, err := engine.CallLLM(ctx, a.llm, "", prompt)
		if err != nil {
			return "", fmt.Errorf("model: %w", err)
		}
		// The model tends to invent its own observations; everything after the first one is dropped.
		if i := strings.Index(reply, observationMarker); i >= 0 {
			reply = reply[:i]
		}

		parsed, err := parseReply(reply)
		if parsed.thought != "" {
			a.publish(ctx, Event{RunID: runID, Step: n, Type: EventThought, Text: parsed.thought})
		}

		var observation string
		switch {
		case err != nil:
			slog.Debug("agent: unparseable reply", slog.String("run_id", runID), slog.Any("error", err))
			observation = engine.ReactFormatHint

		case parsed.final:
			a.publish(ctx, Event{RunID: runID, Step: n, Type: EventAnswer, Text: parsed.answer})
			return parsed.answer, nil

		default:
			a.publish(ctx, Event{RunID: runID, Step: n, Type: EventAction, Tool: parsed.tool, Input: parsed.input})
			observation = a.observe(ctx, parsed.tool, parsed.input)
			if err := ctx.Err(); err != nil {
				return "", err
			}
		}

		a.publish(ctx, Event{RunID: runID, Step: n, Type: EventObservation, Tool: parsed.tool, Text: observation})
		scratchpad.WriteString(reply)
		scratchpad.WriteString("\nObservation: ")
		scratchpad.WriteString(observation)
		scratchpad.WriteString("\nThought:")
	}
	return "", fmt.Errorf("%w (%d)", ErrMaxSteps, a.maxSteps)
}

// observe runs a tool and turns any failure into text the model can react to.
func (a *Agent) observe(ctx context.Context, tool, input string) string {
	out, err := a.tools.Execute(ctx, tool, input)
	switch {
	case errors.Is(err, ErrUnknownTool):
		return fmt.Sprintf("%s is not a valid tool, try one of [%s].", tool, strings.Join(a.tools.Names(), ", "))
	case err != nil:
		slog.Warn("agent: tool failed", slog.String("tool", tool), slog.Any("error", err))
		return fmt.Sprintf("%s failed: %v", tool, err)
	}
	return out
}

func (a *Agent) publish(ctx context.Context, event Event) {
	if err := a.events.Publish(ctx, event); err != nil {
		slog.Debug("agent: event sink failed", slog.String("type", string(event.Type)), slog.Any("error", err))
	}
}
