package engine

import (
	"bytes"
	"errors"
	"net/url"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// boilerplateSelectors are removed before structured extraction.
var boilerplateSelectors = []string{
	"script", "style", "noscript", "iframe", "svg", "form",
	"header", "footer", "nav", "aside",
	".advertisement", ".ad", ".ads", ".sidebar", ".comments", ".cookie-banner",
	"[role=navigation]", "[role=banner]", "[role=contentinfo]", "[aria-hidden=true]",
}

// contentSelectors are tried in order; the first non-empty match wins.
var contentSelectors = []string{
	"main", "article", "[role=main]",
	".content", ".post-content", ".article-content", ".entry-content",
	"#content", "#main",
}

// ExtractStructured pulls the main readable text out of an HTML page with goquery:
// boilerplate containers are dropped, main/article-like containers are preferred
// over <body>, whitespace is collapsed.
func ExtractStructured(body []byte) (title, content string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}

	title = pageTitle(doc)

	doc.Find(strings.Join(boilerplateSelectors, ", ")).Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})

	var contentSel *goquery.Selection
	for _, sel := range contentSelectors {
		s := doc.Find(sel).First()
		if s.Length() > 0 && strings.TrimSpace(s.Text()) != "" {
			contentSel = s
			break
		}
	}
	if contentSel == nil {
		contentSel = doc.Find("body")
	}

	content = CollapseWhitespace(contentSel.Text())
	if content == "" {
		return title, "", errors.New("no text in page")
	}
	return title, content, nil
}

// pageTitle returns <title>, falling back to og:title.
func pageTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
			title = strings.TrimSpace(og)
		}
	}
	return title
}

// LoadDocument is the generic document loader: go-readability picks the article,
// html-to-markdown renders it as text. Falls back to regex-based stripping when
// readability cannot parse the page.
func LoadDocument(body []byte, pageURL *url.URL) (title, content string, err error) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil || strings.TrimSpace(article.Content) == "" {
		return stripHTML(string(body))
	}

	md, err := htmltomarkdown.ConvertString(article.Content)
	if err != nil || strings.TrimSpace(md) == "" {
		md = article.TextContent
	}
	content = strings.TrimSpace(md)
	if content == "" {
		return article.Title, "", errors.New("readability produced no text")
	}
	return article.Title, content, nil
}

var (
	titleRe      = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)
	ogTitleRe    = regexp.MustCompile(`(?i)<meta[^>]*property=["']og:title["'][^>]*content=["']([^"']+)["']`)
	dropBlocksRe = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
		regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`),
		regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`),
		regexp.MustCompile(`(?is)<header[^>]*>.*?</header>`),
		regexp.MustCompile(`(?is)<footer[^>]*>.*?</footer>`),
		regexp.MustCompile(`(?is)<nav[^>]*>.*?</nav>`),
		regexp.MustCompile(`(?is)<aside[^>]*>.*?</aside>`),
		regexp.MustCompile(`(?is)<iframe[^>]*>.*?</iframe>`),
	}
)

// stripHTML uses regex-based HTML stripping when readability fails.
func stripHTML(html string) (title, content string, err error) {
	if m := titleRe.FindStringSubmatch(html); len(m) > 1 {
		title = strings.TrimSpace(m[1])
	}
	if title == "" {
		if m := ogTitleRe.FindStringSubmatch(html); len(m) > 1 {
			title = strings.TrimSpace(m[1])
		}
	}

	for _, re := range dropBlocksRe {
		html = re.ReplaceAllString(html, "")
	}
	content = CollapseWhitespace(htmlTagRe.ReplaceAllString(html, " "))
	if content == "" {
		return title, "", errors.New("no text in page")
	}
	return title, content, nil
}
