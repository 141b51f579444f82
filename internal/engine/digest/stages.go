package digest

import (
	"context"
	"errors"

	"github.com/anatolykoptev/go_research/internal/engine"
	"github.com/anatolykoptev/go_research/internal/engine/sources"
)

// Collaborators, replaceable in tests.
var (
	fetchPage       = engine.FetchPage
	fetchCaptions   = sources.FetchCaptions
	fetchTranscript = sources.FetchTranscript
)

// Stage names as reported in Document.Stage and logs.
const (
	StageCaptions   = "captions"
	StageTranscript = "transcript"
	StageStructured = "structured"
	StageLoader     = "loader"
)

// VideoStages: caption index scrape, transcript failover, then the watch page
// treated as an ordinary web page.
func VideoStages() Cascade {
	return append(Cascade{
		{Name: StageCaptions, Run: captionsStage},
		{Name: StageTranscript, Run: transcriptStage},
	}, GenericStages()...)
}

// GenericStages: goquery structured extraction, then the readability loader.
// Both must clear MinContentChars.
func GenericStages() Cascade {
	minChars := engine.Cfg.MinContentChars
	return Cascade{
		{Name: StageStructured, MinChars: minChars, Run: structuredStage},
		{Name: StageLoader, MinChars: minChars, Run: loaderStage},
	}
}

var errNoVideoID = errors.New("no video id")

func captionsStage(ctx context.Context, t *Target) (string, string, error) {
	if t.VideoID == "" {
		return "", "", errNoVideoID
	}
	return fetchCaptions(ctx, t.VideoID)
}

func transcriptStage(ctx context.Context, t *Target) (string, string, error) {
	if t.VideoID == "" {
		return "", "", errNoVideoID
	}
	text, err := fetchTranscript(ctx, t.VideoID)
	return "", text, err
}

func structuredStage(ctx context.Context, t *Target) (string, string, error) {
	body, err := t.Page(ctx)
	if err != nil {
		return "", "", err
	}
	return engine.ExtractStructured(body)
}

func loaderStage(ctx context.Context, t *Target) (string, string, error) {
	body, err := t.Page(ctx)
	if err != nil {
		return "", "", err
	}
	return engine.LoadDocument(body, t.URL)
}
