package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_research/internal/engine"
)

var (
	// wikiAPIURL is formatted with the configured language code.
	wikiAPIURL  = "https://%s.wikipedia.org/w/api.php"
	wikiLimiter = rate.NewLimiter(rate.Every(200*time.Millisecond), 5)
)

const (
	wikiTopK        = 3
	wikiMaxQueryLen = 300

	WikipediaNoResult = "No good Wikipedia Search Result was found"
)

// WikiPage is a Wikipedia article title with its introduction.
type WikiPage struct {
	Title   string
	Summary string
}

type wikiSearchResp struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

type wikiExtractResp struct {
	Query struct {
		Redirects []struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"redirects"`
		Pages map[string]struct {
			Title   string  `json:"title"`
			Extract string  `json:"extract"`
			Missing *string `json:"missing"`
		} `json:"pages"`
	} `json:"query"`
}

// SearchWikipedia finds the top three articles for query and returns their intros,
// in search rank order. Articles without an intro fall back to the search snippet.
func SearchWikipedia(ctx context.Context, query string) ([]WikiPage, error) {
	query = engine.TruncateRunes(strings.TrimSpace(query), wikiMaxQueryLen, "")
	if query == "" {
		return nil, nil
	}
	engine.IncrWikipediaRequests()

	var search wikiSearchResp
	err := wikiGet(ctx, url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {fmt.Sprint(wikiTopK)},
		"srprop":   {"snippet"},
	}, &search)
	if err != nil {
		return nil, fmt.Errorf("wikipedia search: %w", err)
	}
	if len(search.Query.Search) == 0 {
		return nil, nil
	}

	titles := make([]string, 0, len(search.Query.Search))
	for _, s := range search.Query.Search {
		titles = append(titles, s.Title)
	}

	var extracts wikiExtractResp
	err = wikiGet(ctx, url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"redirects":   {"1"},
		"titles":      {strings.Join(titles, "|")},
	}, &extracts)
	if err != nil {
		return nil, fmt.Errorf("wikipedia extracts: %w", err)
	}

	byTitle := make(map[string]string, len(extracts.Query.Pages))
	for _, p := range extracts.Query.Pages {
		if p.Missing == nil {
			byTitle[p.Title] = strings.TrimSpace(p.Extract)
		}
	}
	for _, r := range extracts.Query.Redirects {
		if text, ok := byTitle[r.To]; ok {
			byTitle[r.From] = text
		}
	}

	pages := make([]WikiPage, 0, len(titles))
	for _, s := range search.Query.Search {
		summary := byTitle[s.Title]
		if summary == "" {
			summary = markupText(s.Snippet)
		}
		if summary == "" {
			continue
		}
		pages = append(pages, WikiPage{Title: s.Title, Summary: summary})
	}
	return pages, nil
}

// FormatWikipedia renders pages as "Page:/Summary:" blocks capped at ToolOutputMaxChars.
func FormatWikipedia(pages []WikiPage) string {
	if len(pages) == 0 {
		return WikipediaNoResult
	}
	blocks := make([]string, 0, len(pages))
	for _, p := range pages {
		blocks = append(blocks, fmt.Sprintf("Page: %s\nSummary: %s", p.Title, p.Summary))
	}
	return engine.TruncateRunes(strings.Join(blocks, "\n\n"), ToolOutputMaxChars, "")
}

// wikiGet calls the MediaWiki API for the configured language and decodes the JSON reply.
func wikiGet(ctx context.Context, params url.Values, out any) error {
	params.Set("format", "json")
	params.Set("utf8", "1")
	endpoint := fmt.Sprintf(wikiAPIURL, engine.Cfg.WikiLang) + "?" + params.Encode()

	if err := wikiLimiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		req.Header.Set("Accept", "application/json")
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
