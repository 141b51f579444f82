package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_research/internal/engine"
)

// englishLangs are the preferred caption languages, most specific first.
var englishLangs = []string{"en", "en-US", "en-GB"}

// FetchCaptions scrapes the watch page caption index, picks an English track
// and downloads it as WebVTT. Returns the video title (may be empty) and the
// cleaned caption text.
func FetchCaptions(ctx context.Context, videoID string) (title, text string, err error) {
	engine.IncrCaptionRequests()

	body, err := getText(ctx, ytWatchURL+videoID, 6*1024*1024)
	if err != nil {
		return "", "", fmt.Errorf("watch page: %w", err)
	}

	player, err := parseWatchPage(body)
	if err != nil {
		return "", "", err
	}
	title = player.title()

	tracks, err := player.tracks()
	if err != nil {
		return title, "", err
	}
	track, ok := pickEnglishTrack(usableTracks(tracks))
	if !ok {
		return title, "", errors.New("no usable English caption track")
	}

	vtt, err := fetchVTT(ctx, track.BaseURL)
	if err != nil {
		return title, "", err
	}
	text = CleanVTT(vtt)
	if text == "" {
		return title, "", errors.New("caption track is empty")
	}
	return title, text, nil
}

// parseWatchPage pulls ytInitialPlayerResponse out of watch page HTML.
func parseWatchPage(body []byte) (*innertubePlayerResp, error) {
	idx := bytes.Index(body, []byte(ytInitialPlayerResponseMarker))
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}
	var player innertubePlayerResp
	if err := json.Unmarshal(jsonData, &player); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return &player, nil
}

// pickEnglishTrack prefers en, en-US, en-GB, then any en-* variant.
// Within each language a manual track beats an auto-generated one.
func pickEnglishTrack(tracks []captionTrack) (captionTrack, bool) {
	for _, wantManual := range []bool{true, false} {
		for _, lang := range englishLangs {
			for _, t := range tracks {
				if strings.EqualFold(t.LanguageCode, lang) && (t.Kind != "asr" || !wantManual) {
					return t, true
				}
			}
		}
	}
	for _, wantManual := range []bool{true, false} {
		for _, t := range tracks {
			if isEnglish(t.LanguageCode) && (t.Kind != "asr" || !wantManual) {
				return t, true
			}
		}
	}
	return captionTrack{}, false
}

func isEnglish(code string) bool {
	code = strings.ToLower(code)
	return code == "en" || strings.HasPrefix(code, "en-")
}

// vttURL rewrites a caption base URL to request the WebVTT format.
func vttURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("fmt", "vtt")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// fetchVTT downloads a caption track as WebVTT within CaptionTimeout.
func fetchVTT(ctx context.Context, baseURL string) (string, error) {
	target, err := vttURL(baseURL)
	if err != nil {
		return "", fmt.Errorf("caption url: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, engine.Cfg.CaptionTimeout)
	defer cancel()

	body, err := getText(ctx, target, 2*1024*1024)
	if err != nil {
		return "", fmt.Errorf("fetch vtt: %w", err)
	}
	return string(body), nil
}
