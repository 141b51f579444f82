package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_research/internal/engine"
)

// ArXiv export API. Its terms ask for no more than one request every three seconds.
var (
	arxivAPIURL  = "https://export.arxiv.org/api/query"
	arxivLimiter = rate.NewLimiter(rate.Every(3*time.Second), 1)
)

const (
	arxivMaxResults  = 3
	arxivMaxQueryLen = 300

	// ToolOutputMaxChars caps the text a lookup tool hands back to the model.
	ToolOutputMaxChars = 4000

	ArxivNoResult = "No good Arxiv Result was found"
)

// arxivIDRe matches new-style (1706.03762, 2301.01234v2) and old-style (hep-th/9901001) identifiers.
var arxivIDRe = regexp.MustCompile(`^(?:\d{2}(?:0[1-9]|1[0-2])\.\d{4,5}(?:v\d+)?|[a-z\-]+(?:\.[A-Z]{2})?/\d{7}(?:v\d+)?)$`)

// ArxivPaper is one entry of an ArXiv Atom feed.
type ArxivPaper struct {
	ID        string
	Title     string
	Authors   []string
	Summary   string
	Published time.Time
}

type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

// isArxivQueryByID reports whether every token of the query is an ArXiv identifier.
func isArxivQueryByID(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if !arxivIDRe.MatchString(f) {
			return false
		}
	}
	return true
}

// SearchArxiv queries the ArXiv export API and returns up to three papers.
// A query made only of ArXiv identifiers is looked up by id_list.
func SearchArxiv(ctx context.Context, query string) ([]ArxivPaper, error) {
	query = engine.TruncateRunes(strings.TrimSpace(query), arxivMaxQueryLen, "")
	if query == "" {
		return nil, nil
	}
	engine.IncrArxivRequests()

	params := url.Values{}
	if isArxivQueryByID(query) {
		params.Set("id_list", strings.Join(strings.Fields(query), ","))
	} else {
		params.Set("search_query", query)
	}
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprint(arxivMaxResults))

	if err := arxivLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIURL+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		req.Header.Set("Accept", "application/atom+xml")
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("arxiv: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("arxiv: read: %w", err)
	}
	return parseArxivFeed(body)
}

func parseArxivFeed(body []byte) ([]ArxivPaper, error) {
	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("arxiv: parse feed: %w", err)
	}

	papers := make([]ArxivPaper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		// The API reports malformed queries as a single entry pointing at /api/errors.
		if strings.Contains(e.ID, "/api/errors") {
			continue
		}
		p := ArxivPaper{
			ID:      strings.TrimSpace(e.ID),
			Title:   engine.CollapseWhitespace(e.Title),
			Summary: engine.CollapseWhitespace(e.Summary),
		}
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
			p.Published = t
		}
		for _, a := range e.Authors {
			if name := strings.TrimSpace(a.Name); name != "" {
				p.Authors = append(p.Authors, name)
			}
		}
		if p.Title == "" && p.Summary == "" {
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// FormatArxiv renders papers as Published/Title/Authors/Summary blocks,
// capped at ToolOutputMaxChars.
func FormatArxiv(papers []ArxivPaper) string {
	if len(papers) == 0 {
		return ArxivNoResult
	}
	blocks := make([]string, 0, len(papers))
	for _, p := range papers {
		published := ""
		if !p.Published.IsZero() {
			published = p.Published.Format("2006-01-02")
		}
		blocks = append(blocks, fmt.Sprintf("Published: %s\nTitle: %s\nAuthors: %s\nSummary: %s",
			published, p.Title, strings.Join(p.Authors, ", "), p.Summary))
	}
	return engine.TruncateRunes(strings.Join(blocks, "\n\n"), ToolOutputMaxChars, "")
}
