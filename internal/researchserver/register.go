package researchserver

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/anatolykoptev/go_research/internal/engine"
	"github.com/anatolykoptev/go_research/internal/engine/agent"
	"github.com/anatolykoptev/go_research/internal/engine/digest"
	"github.com/anatolykoptev/go_research/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 2

// RegisterTools registers the research tools on the given MCP server:
// research_ask, summarize_url.
func RegisterTools(server *mcp.Server) {
	sessions := newSessionStore(maxSessions)
	registerResearchAsk(server, sessions)
	registerSummarizeURL(server)
}

func registerResearchAsk(server *mcp.Server, sessions *sessionStore) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "research_ask",
		Description: "Answer a research question with a reasoning agent that searches ArXiv papers and Wikipedia articles. Returns the answer plus every reasoning step (thought, action, observation). Pass session_id from a previous call to continue the same conversation; an unknown or expired session_id starts a new conversation with a new session_id.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ResearchAskInput) (*mcp.CallToolResult, engine.ResearchAskOutput, error) {
		if err := toolutil.Required("query", input.Query); err != nil {
			return nil, engine.ResearchAskOutput{}, err
		}
		key := toolutil.APIKey(input.APIKey)
		if key == "" {
			return nil, engine.ResearchAskOutput{}, engine.ErrMissingCredential
		}

		s, found := sessions.get(input.SessionID)
		if input.SessionID != "" && !found {
			slog.Warn("research_ask: unknown session, starting a new one",
				slog.String("requested", input.SessionID), slog.String("session", s.ID))
		}

		rec := &agent.Recorder{}
		answer, err := s.AskWithKey(ctx, key, input.Query, rec)
		out := engine.ResearchAskOutput{
			SessionID: s.ID,
			Query:     input.Query,
			Answer:    answer,
			Steps:     toolutil.StepsFromEvents(rec.Events()),
			Turns:     len(s.Transcript()),
		}
		if err != nil {
			if errors.Is(err, engine.ErrMissingCredential) {
				return nil, engine.ResearchAskOutput{}, err
			}
			slog.Warn("research_ask: agent failed", slog.String("session", s.ID), slog.Any("error", err))
			out.Error = err.Error()
		}
		return nil, out, nil
	})
}

func registerSummarizeURL(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "summarize_url",
		Description: "Summarize a YouTube video or a web page in about 300 words. Videos use English captions, then transcript fallbacks, then the watch page; web pages use structured HTML extraction, then a readability loader. Returns the summary with the extraction stage used.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.SummarizeInput) (*mcp.CallToolResult, engine.Summary, error) {
		if err := toolutil.Required("url", input.URL); err != nil {
			return nil, engine.Summary{}, err
		}
		s, err := digest.Summarize(ctx, input.URL, toolutil.APIKey(input.APIKey))
		if err != nil {
			return nil, engine.Summary{}, err
		}
		return nil, s, nil
	})
}

const maxSessions = 256

// sessionStore keeps chat sessions for research_ask, dropping the oldest past limit.
type sessionStore struct {
	mu    sync.Mutex
	limit int
	byID  map[string]*agent.Session
	order []string
}

func newSessionStore(limit int) *sessionStore {
	return &sessionStore{limit: limit, byID: make(map[string]*agent.Session)}
}

// get returns the session for id, or a new one when id is empty or unknown.
// found reports whether id named a live session.
func (st *sessionStore) get(id string) (s *agent.Session, found bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if existing, ok := st.byID[id]; ok {
		return existing, true
	}

	s = agent.NewSession("", nil, nil)
	st.byID[s.ID] = s
	st.order = append(st.order, s.ID)
	for len(st.order) > st.limit {
		delete(st.byID, st.order[0])
		st.order = st.order[1:]
	}
	return s, false
}

func (st *sessionStore) size() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.byID)
}
