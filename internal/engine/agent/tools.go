package agent

import (
	"context"

	"github.com/anatolykoptev/go_research/internal/engine/sources"
)

// Capability tags of the built-in lookup tools.
const (
	CapabilityPapers       = "papers"
	CapabilityEncyclopedia = "encyclopedia"
)

// ArxivTool searches ArXiv papers.
type ArxivTool struct {
	// Search defaults to sources.SearchArxiv.
	Search func(ctx context.Context, query string) ([]sources.ArxivPaper, error)
}

func (ArxivTool) Name() string { return "arxiv" }

func (ArxivTool) Description() string {
	return "Searches scientific papers on arxiv.org. Useful for questions about physics, mathematics, " +
		"computer science, quantitative biology, quantitative finance, statistics, electrical engineering " +
		"and economics. Input should be a search query or an ArXiv identifier."
}

func (ArxivTool) Capabilities() []string { return []string{CapabilityPapers} }

func (t ArxivTool) Run(ctx context.Context, input string) (string, error) {
	search := t.Search
	if search == nil {
		search = sources.SearchArxiv
	}
	papers, err := search(ctx, input)
	if err != nil {
		return "", err
	}
	return sources.FormatArxiv(papers), nil
}

// WikipediaTool looks up encyclopedia articles.
type WikipediaTool struct {
	// Search defaults to sources.SearchWikipedia.
	Search func(ctx context.Context, query string) ([]sources.WikiPage, error)
}

func (WikipediaTool) Name() string { return "wikipedia" }

func (WikipediaTool) Description() string {
	return "Looks up Wikipedia articles. Useful for general questions about people, places, companies, " +
		"facts, historical events or other subjects. Input should be a search query."
}

func (WikipediaTool) Capabilities() []string { return []string{CapabilityEncyclopedia} }

func (t WikipediaTool) Run(ctx context.Context, input string) (string, error) {
	search := t.Search
	if search == nil {
		search = sources.SearchWikipedia
	}
	pages, err := search(ctx, input)
	if err != nil {
		return "", err
	}
	return sources.FormatWikipedia(pages), nil
}

// DefaultTools returns a registry with the arxiv and wikipedia tools.
func DefaultTools() *Registry {
	r, _ := NewRegistry(ArxivTool{}, WikipediaTool{})
	return r
}
