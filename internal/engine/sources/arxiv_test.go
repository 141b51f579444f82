package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_research/internal/engine"
)

const sampleAtom = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>ArXiv Query</title>
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <published>2017-06-12T17:57:34Z</published>
    <title>Attention Is All
      You Need</title>
    <summary>  The dominant sequence transduction models are based on
      complex recurrent or convolutional neural networks.</summary>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/1810.04805v2</id>
    <published>2018-10-11T00:50:01Z</published>
    <title>BERT</title>
    <summary>Pre-training of deep bidirectional transformers.</summary>
    <author><name>Jacob Devlin</name></author>
  </entry>
</feed>`

func useArxivServer(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	savedURL, savedLimiter := arxivAPIURL, arxivLimiter
	arxivAPIURL = srv.URL + "/api/query"
	arxivLimiter = rate.NewLimiter(rate.Inf, 1)
	t.Cleanup(func() { arxivAPIURL, arxivLimiter = savedURL, savedLimiter })

	engine.Init(engine.Config{HTTPClient: srv.Client()})
}

func TestSearchArxiv(t *testing.T) {
	useArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "transformers", r.URL.Query().Get("search_query"))
		assert.Equal(t, "3", r.URL.Query().Get("max_results"))
		_, _ = w.Write([]byte(sampleAtom))
	})

	papers, err := SearchArxiv(context.Background(), "  transformers ")
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, "Attention Is All You Need", papers[0].Title)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, papers[0].Authors)
	assert.Equal(t, 2017, papers[0].Published.Year())

	out := FormatArxiv(papers)
	assert.True(t, strings.HasPrefix(out, "Published: 2017-06-12\nTitle: Attention Is All You Need\nAuthors: Ashish Vaswani, Noam Shazeer\nSummary: The dominant"), out)
	assert.Contains(t, out, "\n\nPublished: 2018-10-11\nTitle: BERT")
}

func TestSearchArxiv_IDList(t *testing.T) {
	useArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1706.03762,1810.04805v2", r.URL.Query().Get("id_list"))
		assert.Empty(t, r.URL.Query().Get("search_query"))
		_, _ = w.Write([]byte(sampleAtom))
	})

	_, err := SearchArxiv(context.Background(), "1706.03762 1810.04805v2")
	require.NoError(t, err)
}

func TestSearchArxiv_ErrorEntryAndEmpty(t *testing.T) {
	useArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"><entry><id>http://arxiv.org/api/errors#incorrect_id_format</id><title>Error</title><summary>incorrect id format</summary></entry></feed>`))
	})

	papers, err := SearchArxiv(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, papers)
	assert.Equal(t, ArxivNoResult, FormatArxiv(papers))

	papers, err = SearchArxiv(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, papers)
}

func TestSearchArxiv_HTTPError(t *testing.T) {
	useArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	})
	_, err := SearchArxiv(context.Background(), "q")
	assert.Error(t, err)
}

func TestSearchArxiv_LimiterHonoursContext(t *testing.T) {
	useArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleAtom))
	})
	arxivLimiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	require.True(t, arxivLimiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := SearchArxiv(ctx, "q")
	assert.Error(t, err)
}

func TestFormatArxiv_Capped(t *testing.T) {
	long := ArxivPaper{Title: "Long", Summary: strings.Repeat("word ", 2000)}
	out := FormatArxiv([]ArxivPaper{long})
	assert.LessOrEqual(t, len([]rune(out)), ToolOutputMaxChars)
	assert.Greater(t, len([]rune(out)), ToolOutputMaxChars/2)
}

func TestIsArxivQueryByID(t *testing.T) {
	assert.True(t, isArxivQueryByID("1706.03762"))
	assert.True(t, isArxivQueryByID("2301.12345v3"))
	assert.True(t, isArxivQueryByID("hep-th/9901001"))
	assert.False(t, isArxivQueryByID("attention 1706.03762"))
	assert.False(t, isArxivQueryByID("1713.03762"))
	assert.False(t, isArxivQueryByID(""))
}
