package sources

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleVTT = `WEBVTT
Kind: captions
Language: en

NOTE This file was generated for testing
and spans two lines

STYLE
::cue { color: white }

1
00:00:00.000 --> 00:00:02.500 align:start position:0%
<v Narrator>Welcome to the <c.colorE5E5E5>lecture</c>

2
00:00:02.500 --> 00:00:05.000
Today we talk about <i>attention</i> &amp; transformers

intro-3
00:00:05.000 --> 00:00:07.000 align:start position:0%
Today we talk about attention &amp; transformers
so<00:00:05.400><c> let's</c><00:00:05.800><c> begin</c>

00:00:07.000 --> 00:00:07.010
so let's begin


00:00:07.010 --> 00:00:09.000
so let's begin
and finish&nbsp;early
`

func TestCleanVTT(t *testing.T) {
	got := CleanVTT(sampleVTT)

	assert.Equal(t,
		"Welcome to the lecture Today we talk about attention & transformers so let's begin and finish early",
		got)

	assert.NotContains(t, got, "-->")
	assert.NotContains(t, got, "WEBVTT")
	assert.NotContains(t, got, "NOTE")
	assert.NotContains(t, got, "::cue")
	assert.NotContains(t, got, "intro-3")
	assert.False(t, regexp.MustCompile(`<[^>]*>`).MatchString(got), "markup left in %q", got)
	assert.False(t, regexp.MustCompile(`\d{2}:\d{2}\.\d{3}`).MatchString(got), "timestamps left in %q", got)
}

func TestCleanVTT_CRLF(t *testing.T) {
	in := strings.ReplaceAll("WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nhello\n\n00:00:02.000 --> 00:00:03.000\nworld\n", "\n", "\r\n")
	assert.Equal(t, "hello world", CleanVTT(in))
}

func TestCleanVTT_Empty(t *testing.T) {
	assert.Empty(t, CleanVTT(""))
	assert.Empty(t, CleanVTT("WEBVTT\n\n00:00:01.000 --> 00:00:02.000\n\n"))
}

func TestStripCueMarkup(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain   text", "plain text"},
		{"<b>bold</b>", "bold"},
		{"a &lt;tag&gt; literal", "a <tag> literal"},
		{"word<00:00:01.000><c> next</c>", "word next"},
		{"<v.loud Speaker One>Hi</v>", "Hi"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCueMarkup(tt.in))
		})
	}
}
