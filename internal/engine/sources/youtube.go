package sources

// YouTube implementation is split across four files by responsibility:
//   youtube_innertube.go  Innertube API types, endpoints and HTTP primitives
//   youtube_captions.go   caption-index scrape of the watch page + WebVTT download
//   youtube_transcript.go transcript failover (exact English, engagement panel, remaining tracks)
//   vtt.go                WebVTT cleanup to plain spoken text
