// Package digest turns a URL into a short summary: an ordered, fail-soft
// extraction cascade produces the source text, a single stuff prompt
// summarizes it.
package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go_research/internal/engine"
)

// ErrTooShort marks a stage result below the minimum content length.
var ErrTooShort = errors.New("extracted text too short")

// Target is the URL a cascade works on. The page body is fetched at most once
// successfully and shared by every stage that needs it.
type Target struct {
	URL     *url.URL
	Kind    engine.URLKind
	VideoID string

	title   string // best title seen so far, even from failed stages
	body    []byte
	fetched bool
}

// NewTarget validates and classifies raw.
func NewTarget(raw string) (*Target, error) {
	u, err := engine.ValidateURL(raw)
	if err != nil {
		return nil, err
	}
	t := &Target{URL: u, Kind: engine.ClassifyURL(u.String())}
	if t.Kind == engine.KindVideo {
		t.VideoID = engine.VideoID(u.String())
	}
	return t, nil
}

// Page returns the raw HTML of the target, fetching it on first use.
// A failed fetch is not remembered, so a later stage may retry it.
func (t *Target) Page(ctx context.Context) ([]byte, error) {
	if t.fetched {
		return t.body, nil
	}
	body, err := fetchPage(ctx, t.URL.String())
	if err != nil {
		return nil, err
	}
	t.body, t.fetched = body, true
	return body, nil
}

func (t *Target) noteTitle(title string) {
	if title = strings.TrimSpace(title); title != "" && t.title == "" {
		t.title = title
	}
}

// Stage is one extraction strategy.
type Stage struct {
	Name string
	// MinChars is the shortest acceptable result in runes; 0 accepts any non-empty text.
	MinChars int
	Run      func(ctx context.Context, t *Target) (title, text string, err error)
}

// Cascade is an ordered list of stages tried until one yields acceptable text.
type Cascade []Stage

// Run tries each stage in order and stops at the first success. A stage that
// errors, returns nothing, or returns too little is logged and skipped.
// When every stage fails the error wraps engine.ErrExtractionFailed and each stage error.
func (c Cascade) Run(ctx context.Context, t *Target) (engine.Document, error) {
	errs := []error{engine.ErrExtractionFailed}
	for _, st := range c {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		title, text, err := st.Run(ctx, t)
		t.noteTitle(title)
		text = strings.TrimSpace(text)
		if err == nil {
			err = checkLength(text, st.MinChars)
		}
		if err != nil {
			engine.IncrStageFailures()
			slog.Warn("digest: stage failed",
				slog.String("stage", st.Name), slog.String("url", t.URL.String()), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("%s: %w", st.Name, err))
			continue
		}

		slog.Debug("digest: stage succeeded",
			slog.String("stage", st.Name), slog.String("url", t.URL.String()), slog.Int("chars", utf8.RuneCountInString(text)))
		return engine.Document{
			Text:      text,
			SourceURL: t.URL.String(),
			Title:     t.title,
			Stage:     st.Name,
		}, nil
	}

	engine.IncrExtractionFailures()
	return engine.Document{}, errors.Join(errs...)
}

func checkLength(text string, minChars int) error {
	if text == "" {
		return errors.New("empty result")
	}
	if n := utf8.RuneCountInString(text); n < minChars {
		return fmt.Errorf("%w: %d < %d chars", ErrTooShort, n, minChars)
	}
	return nil
}

// Extract validates and classifies rawURL, then runs the matching cascade.
func Extract(ctx context.Context, rawURL string) (engine.Document, error) {
	t, err := NewTarget(rawURL)
	if err != nil {
		return engine.Document{}, err
	}
	return CascadeFor(t.Kind).Run(ctx, t)
}

// CascadeFor returns the cascade used for kind.
func CascadeFor(kind engine.URLKind) Cascade {
	if kind == engine.KindVideo {
		return VideoStages()
	}
	return GenericStages()
}
