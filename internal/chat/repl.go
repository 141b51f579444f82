package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/anatolykoptev/go_research/internal/engine"
	"github.com/anatolykoptev/go_research/internal/engine/agent"
)

var ErrQuit = errors.New("quit chat")

// Handlers are the actions the REPL dispatches to.
type Handlers struct {
	Ask       func(ctx context.Context, prompt string) error
	Summarize func(ctx context.Context, rawURL string) error
	SetKey    func(ctx context.Context, key string) error
	History   func(ctx context.Context) error
}

type REPL struct {
	in       *bufio.Reader
	renderer *Renderer
	handlers Handlers
}

func NewREPL(in io.Reader, renderer *Renderer, handlers Handlers) *REPL {
	if in == nil {
		in = strings.NewReader("")
	}
	if renderer == nil {
		renderer = NewRenderer(io.Discard, defaultPrompt)
	}
	return &REPL{
		in:       bufio.NewReader(in),
		renderer: renderer,
		handlers: handlers,
	}
}

// Run reads lines until EOF, /quit or context cancellation. Handler errors are
// printed and the loop continues.
func (r *REPL) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := r.renderer.ShowPrompt(); err != nil {
			return err
		}
		line, err := r.in.ReadString('\n')
		r.renderer.HidePrompt()
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if errors.Is(err, io.EOF) {
				return nil
			}
			continue
		}

		dispatchErr := r.dispatch(ctx, trimmed)
		switch {
		case dispatchErr == nil:
		case errors.Is(dispatchErr, ErrQuit):
			return nil
		default:
			if writeErr := r.renderer.PrintLine("error: " + dispatchErr.Error()); writeErr != nil {
				return writeErr
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

func (r *REPL) dispatch(ctx context.Context, line string) error {
	if !strings.HasPrefix(line, "/") {
		return r.ask(ctx, line)
	}

	commandWithPrefix := line
	args := ""
	if i := strings.IndexByte(line, ' '); i >= 0 {
		commandWithPrefix = line[:i]
		args = strings.TrimSpace(line[i+1:])
	}

	switch strings.TrimPrefix(commandWithPrefix, "/") {
	case "ask":
		if args == "" {
			return errors.New("/ask requires a question")
		}
		return r.ask(ctx, args)
	case "summarize":
		if args == "" {
			return errors.New("/summarize requires a URL")
		}
		if r.handlers.Summarize == nil {
			return errors.New("summarize command is not configured")
		}
		return r.handlers.Summarize(ctx, args)
	case "key":
		if args == "" {
			return errors.New("/key requires an API key")
		}
		if r.handlers.SetKey == nil {
			return errors.New("key command is not configured")
		}
		return r.handlers.SetKey(ctx, args)
	case "history":
		if r.handlers.History == nil {
			return errors.New("history command is not configured")
		}
		return r.handlers.History(ctx)
	case "help":
		return r.renderer.PrintLine(helpText)
	case "quit", "exit":
		return ErrQuit
	default:
		return fmt.Errorf("unsupported command %q", commandWithPrefix)
	}
}

func (r *REPL) ask(ctx context.Context, prompt string) error {
	if r.handlers.Ask == nil {
		return errors.New("ask command is not configured")
	}
	return r.handlers.Ask(ctx, prompt)
}

const helpText = `commands:
  <question>        ask the research agent (ArXiv + Wikipedia)
  /summarize <url>  summarize a YouTube video or web page
  /key <api-key>    set the LLM API key for this session
  /history          print the conversation so far
  /quit             leave`

// SummarizeFunc matches digest.Summarize.
type SummarizeFunc func(ctx context.Context, rawURL, apiKey string) (engine.Summary, error)

// SessionHandlers wires a chat session and a summarizer to the REPL commands.
func SessionHandlers(s *agent.Session, r *Renderer, summarize SummarizeFunc) Handlers {
	warnMissingKey := func() error {
		return r.PrintLine(MissingKeyWarning(engine.Cfg.LLMAPIBase))
	}

	h := Handlers{
		Ask: func(ctx context.Context, prompt string) error {
			answer, err := s.Ask(ctx, prompt)
			switch {
			case errors.Is(err, engine.ErrMissingCredential):
				return warnMissingKey()
			case errors.Is(err, agent.ErrEmptyPrompt):
				return nil
			}
			// On agent failure answer carries the failure reply already stored in the transcript.
			return r.PrintMessage(agent.Message{Role: agent.RoleAssistant, Content: answer})
		},
		SetKey: func(_ context.Context, key string) error {
			s.SetAPIKey(key)
			return r.PrintLine("API key set.")
		},
		History: func(context.Context) error {
			for _, m := range s.Transcript() {
				if err := r.PrintMessage(m); err != nil {
					return err
				}
			}
			return nil
		},
	}
	if summarize != nil {
		h.Summarize = func(ctx context.Context, rawURL string) error {
			sum, err := summarize(ctx, rawURL, s.APIKey())
			switch {
			case errors.Is(err, engine.ErrMissingCredential):
				return warnMissingKey()
			case err != nil:
				return err
			}
			return r.PrintSummary(sum)
		}
	}
	return h
}

// Start prints the greeting and a usage hint, then runs the REPL.
func Start(ctx context.Context, in io.Reader, r *Renderer, s *agent.Session, summarize SummarizeFunc) error {
	for _, m := range s.Transcript() {
		if err := r.PrintMessage(m); err != nil {
			return err
		}
	}
	if err := r.PrintLine(fmt.Sprintf("(try: %q, or /help)", agent.Placeholder)); err != nil {
		return err
	}
	if !s.HasCredential() {
		if err := r.PrintLine(MissingKeyWarning(engine.Cfg.LLMAPIBase) + " (/key <api-key>)"); err != nil {
			return err
		}
	}
	return NewREPL(in, r, SessionHandlers(s, r, summarize)).Run(ctx)
}
