package sources

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// inlineTimestampRe matches karaoke-style cue timestamps such as <00:00:01.520>.
var inlineTimestampRe = regexp.MustCompile(`<\d{1,2}:\d{2}(?::\d{2})?\.\d{3}>`)

// CleanVTT turns a WebVTT caption file into plain spoken text.
// Header, NOTE/STYLE/REGION blocks, cue identifiers, timing lines and markup
// are dropped; entities are unescaped; rolling-caption repeats are collapsed.
func CleanVTT(vtt string) string {
	vtt = strings.ReplaceAll(vtt, "\r\n", "\n")
	vtt = strings.ReplaceAll(vtt, "\r", "\n")

	var out []string
	last := ""
	for _, block := range strings.Split(vtt, "\n\n") {
		lines := strings.Split(strings.Trim(block, "\n"), "\n")
		if len(lines) == 0 || isMetaBlock(lines[0]) {
			continue
		}

		// Cue text starts after the timing line; anything before it is an identifier.
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				lines = lines[i+1:]
				break
			}
		}

		for _, line := range lines {
			if strings.Contains(line, "-->") {
				continue
			}
			text := stripCueMarkup(line)
			if text == "" || text == last {
				continue
			}
			out = append(out, text)
			last = text
		}
	}
	return strings.Join(out, " ")
}

func isMetaBlock(head string) bool {
	head = strings.TrimSpace(head)
	for _, p := range []string{"WEBVTT", "NOTE", "STYLE", "REGION"} {
		if head == p || strings.HasPrefix(head, p+" ") || strings.HasPrefix(head, p+"\t") {
			return true
		}
	}
	return false
}

// stripCueMarkup removes inline timestamps and tags (<c>, <v Speaker>, <i>, ...)
// and unescapes entities.
func stripCueMarkup(line string) string {
	return markupText(inlineTimestampRe.ReplaceAllString(line, ""))
}

// markupText returns the text content of an HTML fragment with whitespace collapsed.
func markupText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}

	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			sb.Write(z.Text())
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
