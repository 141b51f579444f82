package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/anatolykoptev/go_research/internal/engine"
)

// Transcript failover, used when the caption scrape yields nothing:
//  1. ANDROID Innertube /player lists the tracks; the exact "en" track is tried.
//  2. /next engagement panel → /get_transcript returns the default transcript in any locale.
//  3. Every listed track is tried in order.

// getTranscriptRE extracts the continuation token from a raw /next JSON response.
var getTranscriptRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

// FetchTranscript runs the failover sequence and returns the first non-empty text.
func FetchTranscript(ctx context.Context, videoID string) (string, error) {
	engine.IncrTranscriptRequests()
	var errs []error

	tracks, err := fetchPlayerTracks(ctx, videoID)
	if err != nil {
		errs = append(errs, fmt.Errorf("player: %w", err))
	}
	tracks = usableTracks(tracks)

	tried := make(map[string]bool)
	for _, t := range tracks {
		if t.LanguageCode != "en" {
			continue
		}
		tried[t.BaseURL] = true
		text, err := fetchTimedText(ctx, t.BaseURL)
		if err == nil && text != "" {
			return text, nil
		}
		errs = append(errs, trackErr("en", err))
		break
	}

	text, err := fetchTranscriptViaEngagementPanel(ctx, videoID)
	if err == nil {
		return text, nil
	}
	slog.Debug("youtube: engagement panel failed", slog.String("id", videoID), slog.Any("error", err))
	errs = append(errs, fmt.Errorf("engagement panel: %w", err))

	for _, t := range tracks {
		if tried[t.BaseURL] {
			continue
		}
		text, err := fetchTimedText(ctx, t.BaseURL)
		if err == nil && text != "" {
			return text, nil
		}
		errs = append(errs, trackErr(t.LanguageCode, err))
	}

	if len(errs) == 0 {
		errs = append(errs, errors.New("no transcript available"))
	}
	return "", errors.Join(errs...)
}

func trackErr(lang string, err error) error {
	if err == nil {
		err = errors.New("empty")
	}
	return fmt.Errorf("track %s: %w", lang, err)
}

// fetchPlayerTracks lists caption tracks via the ANDROID Innertube /player endpoint.
func fetchPlayerTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	reqBody, err := json.Marshal(innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ytPlayerURL+"?prettyPrint=false", bytes.NewReader(reqBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", ytAndroidUA)
		req.Header.Set("X-Youtube-Client-Name", "3")
		req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("android innertube: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("android innertube: HTTP %d", resp.StatusCode)
	}

	var player innertubePlayerResp
	if err := json.NewDecoder(resp.Body).Decode(&player); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return player.tracks()
}

func extractTranscriptToken(data []byte) (string, error) {
	if m := getTranscriptRE.FindSubmatch(data); len(m) >= 2 {
		// The params value in the /next JSON response is URL-encoded.
		// /get_transcript expects the decoded (raw base64) form.
		decoded, err := url.QueryUnescape(string(m[1]))
		if err != nil {
			return string(m[1]), nil
		}
		return decoded, nil
	}
	return "", errors.New("getTranscriptEndpoint not found in engagement panels")
}

// parseTranscriptSegments extracts plain text from a /get_transcript JSON response.
func parseTranscriptSegments(resp ytGetTranscriptResp) string {
	var sb strings.Builder
	for _, action := range resp.Actions {
		if action.UpdateEngagementPanelAction == nil {
			continue
		}
		segs := action.UpdateEngagementPanelAction.Content.
			TranscriptRenderer.Content.
			TranscriptSearchPanelRenderer.Body.
			TranscriptSegmentListRenderer.InitialSegments
		for _, seg := range segs {
			if seg.TranscriptSegmentRenderer == nil {
				continue
			}
			for _, run := range seg.TranscriptSegmentRenderer.Snippet.Runs {
				text := strings.TrimSpace(run.Text)
				if text == "" {
					continue
				}
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
	}
	return sb.String()
}

// fetchTranscriptViaEngagementPanel fetches the default transcript via
// POST /next (continuation token) then POST /get_transcript.
func fetchTranscriptViaEngagementPanel(ctx context.Context, videoID string) (string, error) {
	visitorData := generateVisitorData()

	nextData, err := postInnerTubeWEB(ctx, ytNextURL, map[string]any{
		"videoId": videoID,
		"context": ytWebContext(visitorData),
	}, visitorData)
	if err != nil {
		return "", fmt.Errorf("/next: %w", err)
	}

	token, err := extractTranscriptToken(nextData)
	if err != nil {
		return "", fmt.Errorf("token: %w", err)
	}

	transcriptData, err := postInnerTubeWEB(ctx, ytGetTranscriptURL, map[string]any{
		"params":  token,
		"context": ytWebContext(visitorData),
	}, visitorData)
	if err != nil {
		return "", fmt.Errorf("/get_transcript: %w", err)
	}

	var transcriptResp ytGetTranscriptResp
	if err := json.Unmarshal(transcriptData, &transcriptResp); err != nil {
		return "", fmt.Errorf("decode transcript: %w", err)
	}

	text := parseTranscriptSegments(transcriptResp)
	if text == "" {
		return "", errors.New("empty transcript segments")
	}
	return text, nil
}

// fetchTimedText fetches and parses a YouTube timedtext XML caption URL within CaptionTimeout.
func fetchTimedText(ctx context.Context, baseURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, engine.Cfg.CaptionTimeout)
	defer cancel()

	body, err := getText(ctx, baseURL, 512*1024)
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}

	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}

	var sb strings.Builder
	for _, line := range tt.Lines {
		text := engine.CollapseWhitespace(engine.CleanHTML(html.UnescapeString(line.Text)))
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
