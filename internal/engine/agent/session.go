package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go_research/internal/engine"
)

// Greeting opens every transcript.
const Greeting = "Hi, I'm a chatbot who can search ArXiv papers and Wikipedia articles. How can I help you with your research?"

// Placeholder is the example question shown in an empty chat prompt.
const Placeholder = "What is machine learning?"

const failureReply = "I encountered an error while processing your request. " +
	"Please try rephrasing your question or ask about ArXiv papers or Wikipedia topics. Error: %v"

// ErrEmptyPrompt is returned for blank user input; the transcript is left unchanged.
var ErrEmptyPrompt = errors.New("empty prompt")

// Role of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session is one chat conversation. The transcript lives only as long as the
// session; every user message is followed by exactly one assistant message.
type Session struct {
	ID string

	mu       sync.Mutex
	apiKey   string
	tools    *Registry
	events   EventSink
	maxSteps int
	messages []Message
}

// NewSession starts a transcript with the greeting. tools nil uses DefaultTools.
func NewSession(apiKey string, tools *Registry, events EventSink) *Session {
	if tools == nil {
		tools = DefaultTools()
	}
	return &Session{
		ID:       uuid.NewString(),
		apiKey:   strings.TrimSpace(apiKey),
		tools:    tools,
		events:   events,
		messages: []Message{{Role: RoleAssistant, Content: Greeting}},
	}
}

// SetAPIKey replaces the credential used for later turns.
func (s *Session) SetAPIKey(key string) {
	s.mu.Lock()
	s.apiKey = strings.TrimSpace(key)
	s.mu.Unlock()
}

// APIKey returns the credential used for turns, possibly empty.
func (s *Session) APIKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKey
}

// HasCredential reports whether an API key is set.
func (s *Session) HasCredential() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKey != ""
}

// SetMaxSteps overrides the configured agent step limit for this session.
func (s *Session) SetMaxSteps(n int) {
	s.mu.Lock()
	s.maxSteps = n
	s.mu.Unlock()
}

// Transcript returns a copy of the messages so far.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Ask runs one turn. Only prompt is sent to the agent, not the transcript.
//
// Without a credential Ask returns engine.ErrMissingCredential before any
// network call and leaves the transcript untouched. When the agent fails, the
// failure reply is appended and returned together with the error.
func (s *Session) Ask(ctx context.Context, prompt string) (string, error) {
	return s.AskStream(ctx, prompt, nil)
}

// AskStream is Ask with an extra sink that receives this turn's events only.
func (s *Session) AskStream(ctx context.Context, prompt string, extra EventSink) (string, error) {
	return s.AskWithKey(ctx, "", prompt, extra)
}

// AskWithKey is AskStream with a credential for this turn only. The session's
// own key is neither used nor changed unless apiKey is blank.
func (s *Session) AskWithKey(ctx context.Context, apiKey, prompt string, extra EventSink) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(apiKey)
	if key == "" {
		key = s.apiKey
	}
	if key == "" {
		return "", engine.ErrMissingCredential
	}
	llm, err := engine.LLMFor(key)
	if err != nil {
		if errors.Is(err, engine.ErrMissingCredential) {
			return "", err
		}
		return s.fail(prompt, err)
	}

	s.messages = append(s.messages, Message{Role: RoleUser, Content: prompt})

	var sink EventSink = s.events
	if extra != nil {
		sink = Fanout{s.events, extra}
	}
	a, err := New(llm, s.tools, sink, s.maxSteps)
	if err != nil {
		return s.failAfterUser(err)
	}
	answer, err := a.Run(ctx, prompt)
	if err != nil {
		return s.failAfterUser(err)
	}
	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: answer})
	return answer, nil
}

func (s *Session) fail(prompt string, err error) (string, error) {
	s.messages = append(s.messages, Message{Role: RoleUser, Content: prompt})
	return s.failAfterUser(err)
}

func (s *Session) failAfterUser(err error) (string, error) {
	reply := FailureReply(err)
	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: reply})
	return reply, err
}

// FailureReply is the assistant message shown when a turn fails.
func FailureReply(err error) string {
	return fmt.Sprintf(failureReply, err)
}
