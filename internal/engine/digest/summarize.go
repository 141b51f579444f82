package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_research/internal/engine"
)

// Summarize produces a ~300-word summary of rawURL using apiKey.
// The key is checked first: without one nothing touches the network.
// The URL is validated before any fetch. Cached summaries are returned
// with Cached set.
func Summarize(ctx context.Context, rawURL, apiKey string) (engine.Summary, error) {
	llm, err := engine.LLMFor(apiKey)
	if err != nil {
		return engine.Summary{}, err
	}
	t, err := NewTarget(rawURL)
	if err != nil {
		return engine.Summary{}, err
	}
	engine.IncrSummaryRequests()

	key := engine.CacheKey("summary", t.URL.String(), engine.Cfg.LLMModel)
	if s, ok := engine.CacheLoadJSON[engine.Summary](ctx, key); ok {
		s.Cached = true
		return s, nil
	}

	var out engine.Summary
	err = engine.TrackOperation(ctx, "summarize", func(ctx context.Context) error {
		doc, err := CascadeFor(t.Kind).Run(ctx, t)
		if err != nil {
			return err
		}
		slog.Info("digest: extracted",
			slog.String("url", doc.SourceURL), slog.String("stage", doc.Stage), slog.Int("words", engine.WordCount(doc.Text)))

		text, err := SummarizeDocuments(ctx, llm, doc)
		if err != nil {
			return fmt.Errorf("summarize: %w", err)
		}
		out = engine.Summary{
			URL:   doc.SourceURL,
			Title: doc.Title,
			Kind:  t.Kind.String(),
			Stage: doc.Stage,
			Text:  text,
			Words: engine.WordCount(text),
		}
		return nil
	})
	if err != nil {
		return engine.Summary{}, err
	}

	engine.CacheStoreJSON(ctx, key, out)
	return out, nil
}

// Stuff concatenates every document into one text block.
func Stuff(docs ...engine.Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		if text := strings.TrimSpace(d.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// SummarizeDocuments stuffs docs into the summary prompt and returns the reply verbatim.
// Input beyond MaxContentChars is cut at a word boundary.
func SummarizeDocuments(ctx context.Context, llm engine.Completer, docs ...engine.Document) (string, error) {
	content := engine.TruncateAtWord(Stuff(docs...), engine.Cfg.MaxContentChars)
	reply, err := engine.CallLLM(ctx, llm, "", fmt.Sprintf(engine.SummaryPrompt, content))
	if err != nil {
		return "", err
	}
	if reply == "" {
		return "", engine.ErrEmptySummary
	}
	return reply, nil
}
