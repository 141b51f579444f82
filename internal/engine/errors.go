package engine

import "errors"

// Sentinel errors shared by the summarizer and the research agent.
var (
	// ErrMissingCredential blocks any action that would reach the LLM provider.
	ErrMissingCredential = errors.New("missing API key")
	// ErrInvalidURL is returned before any network call for malformed input.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrExtractionFailed means every stage of the extraction cascade failed.
	ErrExtractionFailed = errors.New("content extraction failed")
	// ErrEmptySummary means the model answered with nothing.
	ErrEmptySummary = errors.New("empty summary")
)
