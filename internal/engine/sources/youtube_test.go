package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_research/internal/engine"
)

const testVideoID = "dQw4w9WgXcQ"

// ytFake is a local stand-in for the YouTube endpoints the extractors call.
type ytFake struct {
	srv         *httptest.Server
	watchTracks string // JSON array of caption tracks embedded in the watch page
	playerBody  string
	nextBody    string
	transcript  string
	vtt         map[string]string // lang -> WebVTT
	timedText   map[string]string // lang -> timedtext XML
	playerHits  atomic.Int32
	panelHits   atomic.Int32
}

func newYTFake(t *testing.T) *ytFake {
	t.Helper()
	f := &ytFake{vtt: map[string]string{}, timedText: map[string]string{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		captions := ""
		if f.watchTracks != "" {
			captions = `"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":` + f.watchTracks + `}},`
		}
		fmt.Fprintf(w, `<html><script>var ytInitialPlayerResponse = {%s"videoDetails":{"videoId":%q,"title":"Test {Video}"}};</script></html>`,
			captions, r.URL.Query().Get("v"))
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		lang := r.URL.Query().Get("lang")
		if r.URL.Query().Get("fmt") == "vtt" {
			if body, ok := f.vtt[lang]; ok {
				_, _ = w.Write([]byte(body))
				return
			}
		} else if body, ok := f.timedText[lang]; ok {
			_, _ = w.Write([]byte(body))
			return
		}
		http.NotFound(w, r)
	})
	mux.HandleFunc("/youtubei/v1/player", func(w http.ResponseWriter, r *http.Request) {
		f.playerHits.Add(1)
		if f.playerBody == "" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(f.playerBody))
	})
	mux.HandleFunc("/youtubei/v1/next", func(w http.ResponseWriter, r *http.Request) {
		f.panelHits.Add(1)
		if f.nextBody == "" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(f.nextBody))
	})
	mux.HandleFunc("/youtubei/v1/get_transcript", func(w http.ResponseWriter, r *http.Request) {
		if f.transcript == "" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(f.transcript))
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)

	saved := []string{ytWatchURL, ytPlayerURL, ytNextURL, ytGetTranscriptURL}
	ytWatchURL = f.srv.URL + "/watch?v="
	ytPlayerURL = f.srv.URL + "/youtubei/v1/player"
	ytNextURL = f.srv.URL + "/youtubei/v1/next"
	ytGetTranscriptURL = f.srv.URL + "/youtubei/v1/get_transcript"
	t.Cleanup(func() {
		ytWatchURL, ytPlayerURL, ytNextURL, ytGetTranscriptURL = saved[0], saved[1], saved[2], saved[3]
	})

	engine.Init(engine.Config{HTTPClient: f.srv.Client(), CaptionTimeout: 2 * time.Second})
	return f
}

func (f *ytFake) track(lang, kind string) string {
	return fmt.Sprintf(`{"baseUrl":"%s/api/timedtext?v=%s&lang=%s","languageCode":%q,"kind":%q}`,
		f.srv.URL, testVideoID, lang, lang, kind)
}

func TestFetchCaptions(t *testing.T) {
	f := newYTFake(t)
	f.watchTracks = "[" + f.track("de", "") + "," + f.track("en", "asr") + "," + f.track("en-GB", "") + "]"
	f.vtt["en-GB"] = "WEBVTT\n\n00:00:00.000 --> 00:00:02.000\n<c>manual</c> english track\n"
	f.vtt["en"] = "WEBVTT\n\n00:00:00.000 --> 00:00:02.000\nauto generated\n"

	title, text, err := FetchCaptions(context.Background(), testVideoID)
	require.NoError(t, err)
	assert.Equal(t, "Test {Video}", title)
	assert.Equal(t, "manual english track", text)
}

func TestFetchCaptions_NoEnglish(t *testing.T) {
	f := newYTFake(t)
	f.watchTracks = "[" + f.track("de", "") + "]"

	title, _, err := FetchCaptions(context.Background(), testVideoID)
	require.Error(t, err)
	assert.Equal(t, "Test {Video}", title)
}

func TestFetchCaptions_NoCaptions(t *testing.T) {
	newYTFake(t)
	_, _, err := FetchCaptions(context.Background(), testVideoID)
	assert.Error(t, err)
}

func TestPickEnglishTrack(t *testing.T) {
	tests := []struct {
		name   string
		tracks []captionTrack
		want   string
		ok     bool
	}{
		{"manual en beats asr en", []captionTrack{{LanguageCode: "en", Kind: "asr", BaseURL: "a"}, {LanguageCode: "en", BaseURL: "m"}}, "m", true},
		{"en beats en-US", []captionTrack{{LanguageCode: "en-US", BaseURL: "us"}, {LanguageCode: "en", BaseURL: "en"}}, "en", true},
		{"manual en-GB beats asr en", []captionTrack{{LanguageCode: "en", Kind: "asr", BaseURL: "asr"}, {LanguageCode: "en-GB", BaseURL: "gb"}}, "gb", true},
		{"any en variant", []captionTrack{{LanguageCode: "fr", BaseURL: "fr"}, {LanguageCode: "en-IN", BaseURL: "in"}}, "in", true},
		{"not english", []captionTrack{{LanguageCode: "fr", BaseURL: "fr"}, {LanguageCode: "eno", BaseURL: "x"}}, "", false},
		{"empty", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickEnglishTrack(tt.tracks)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got.BaseURL)
		})
	}
}

func TestUsableTracksSkipsPoToken(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "https://x/api/timedtext?v=1&exp=xpe", LanguageCode: "en"},
		{BaseURL: "https://x/api/timedtext?v=1", LanguageCode: "en"},
		{BaseURL: "", LanguageCode: "en"},
	}
	got := usableTracks(tracks)
	require.Len(t, got, 1)
	assert.Equal(t, "https://x/api/timedtext?v=1", got[0].BaseURL)
}

func TestVTTURL(t *testing.T) {
	got, err := vttURL("https://www.youtube.com/api/timedtext?v=abc&lang=en&fmt=srv3")
	require.NoError(t, err)
	assert.Contains(t, got, "fmt=vtt")
	assert.NotContains(t, got, "srv3")
}

func TestExtractJSON(t *testing.T) {
	in := []byte(`{"a":"}{\"","b":{"c":1}};var x = {}`)
	assert.Equal(t, `{"a":"}{\"","b":{"c":1}}`, string(extractJSON(in)))
	assert.Nil(t, extractJSON([]byte(`nope`)))
	assert.Nil(t, extractJSON([]byte(`{"open":`)))
}

func TestFetchTranscript_ExactEnglish(t *testing.T) {
	f := newYTFake(t)
	f.playerBody = `{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` + f.track("fr", "") + "," + f.track("en", "") + `]}}}`
	f.timedText["en"] = `<transcript><text start="0">It&amp;#39;s   the</text><text start="1">english one</text></transcript>`
	f.timedText["fr"] = `<transcript><text start="0">le français</text></transcript>`

	text, err := FetchTranscript(context.Background(), testVideoID)
	require.NoError(t, err)
	assert.Equal(t, "It's the english one", text)
	assert.Zero(t, f.panelHits.Load(), "engagement panel must not be reached")
}

func TestFetchTranscript_EngagementPanel(t *testing.T) {
	f := newYTFake(t)
	f.playerBody = `{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` + f.track("fr", "") + `]}}}`
	f.nextBody = `{"engagementPanels":[{"x":{"getTranscriptEndpoint":{"params":"Q2dzS%3D"}}}]}`
	f.transcript = `{"actions":[{"updateEngagementPanelAction":{"content":{"transcriptRenderer":{"content":{"transcriptSearchPanelRenderer":{"body":{"transcriptSegmentListRenderer":{"initialSegments":[
		{"transcriptSegmentRenderer":{"snippet":{"runs":[{"text":"bonjour"}]}}},
		{"transcriptSegmentRenderer":{"snippet":{"runs":[{"text":" tout le monde "}]}}}
	]}}}}}}}}]}`
	f.timedText["fr"] = `<transcript><text start="0">should not be used</text></transcript>`

	text, err := FetchTranscript(context.Background(), testVideoID)
	require.NoError(t, err)
	assert.Equal(t, "bonjour tout le monde", text)
}

func TestFetchTranscript_EnumeratesTracks(t *testing.T) {
	f := newYTFake(t)
	f.playerBody = `{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
		f.track("de", "") + "," + f.track("es", "") + `]}}}`
	f.timedText["es"] = `<transcript><text start="0">hola</text></transcript>`

	text, err := FetchTranscript(context.Background(), testVideoID)
	require.NoError(t, err)
	assert.Equal(t, "hola", text)
}

func TestFetchTranscript_Exhausted(t *testing.T) {
	f := newYTFake(t)
	f.playerBody = `{"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"Sign in to confirm"}}`

	_, err := FetchTranscript(context.Background(), testVideoID)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "Sign in to confirm"), err.Error())
	assert.Contains(t, err.Error(), "engagement panel")
	assert.EqualValues(t, 1, f.playerHits.Load())
}

func TestExtractTranscriptToken(t *testing.T) {
	tok, err := extractTranscriptToken([]byte(`{"getTranscriptEndpoint":{"params":"abc%3D%3D"}}`))
	require.NoError(t, err)
	assert.Equal(t, "abc==", tok)

	_, err = extractTranscriptToken([]byte(`{}`))
	assert.Error(t, err)
}
