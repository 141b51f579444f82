package engine

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// URLKind determines which extraction cascade a URL goes through.
type URLKind int

const (
	KindGeneric URLKind = iota // any web page
	KindVideo                  // known video-hosting URL shape
)

func (k URLKind) String() string {
	if k == KindVideo {
		return "video"
	}
	return "generic"
}

// ytHost matches the scheme and any youtube.com host. Scheme and host are
// case-insensitive; paths and IDs are not.
const ytHost = `(?i:^https?://(?:www\.|m\.|music\.)?youtube\.com)`

// videoURLPatterns are the known YouTube URL shapes. Each captures the 11-char video ID.
var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(ytHost + `/watch\?(?:.*&)?v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(ytHost + `/(?:shorts|embed|live|v)/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?i:^https?://(?:www\.|m\.|music\.)?youtube-nocookie\.com)/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?i:^https?://youtu\.be)/([a-zA-Z0-9_-]{11})`),
}

// ValidateURL rejects malformed input before any network call.
// Scheme-less input is rejected rather than guessed.
func ValidateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https: %q", ErrInvalidURL, raw)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: missing host: %q", ErrInvalidURL, raw)
	}
	return u, nil
}

// ClassifyURL classifies by simple pattern matching.
// Pure string matching, no IO.
func ClassifyURL(raw string) URLKind {
	if VideoID(raw) != "" {
		return KindVideo
	}
	return KindGeneric
}

// VideoID pulls the 11-char video ID from any known YouTube URL format.
func VideoID(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, re := range videoURLPatterns {
		if m := re.FindStringSubmatch(raw); len(m) >= 2 {
			return m[1]
		}
	}
	return ""
}
