package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	FetchRequests      atomic.Int64
	FetchErrors        atomic.Int64
	CaptionRequests    atomic.Int64
	TranscriptRequests atomic.Int64
	StageFailures      atomic.Int64
	ExtractionFailures atomic.Int64
	SummaryRequests    atomic.Int64
	AgentRuns          atomic.Int64
	AgentErrors        atomic.Int64
	ArxivRequests      atomic.Int64
	WikipediaRequests  atomic.Int64
}

// metricKeys fixes the output order of FormatMetrics.
var metricKeys = []string{
	"llm_calls", "llm_errors",
	"fetch_requests", "fetch_errors",
	"caption_requests", "transcript_requests",
	"stage_failures", "extraction_failures",
	"summary_requests",
	"agent_runs", "agent_errors",
	"arxiv_requests", "wikipedia_requests",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
		"fetch_requests":      metrics.FetchRequests.Load(),
		"fetch_errors":        metrics.FetchErrors.Load(),
		"caption_requests":    metrics.CaptionRequests.Load(),
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"stage_failures":      metrics.StageFailures.Load(),
		"extraction_failures": metrics.ExtractionFailures.Load(),
		"summary_requests":    metrics.SummaryRequests.Load(),
		"agent_runs":          metrics.AgentRuns.Load(),
		"agent_errors":        metrics.AgentErrors.Load(),
		"arxiv_requests":      metrics.ArxivRequests.Load(),
		"wikipedia_requests":  metrics.WikipediaRequests.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sub-packages.
func IncrCaptionRequests()    { metrics.CaptionRequests.Add(1) }
func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrStageFailures()      { metrics.StageFailures.Add(1) }
func IncrExtractionFailures() { metrics.ExtractionFailures.Add(1) }
func IncrSummaryRequests()    { metrics.SummaryRequests.Add(1) }
func IncrAgentRuns()          { metrics.AgentRuns.Add(1) }
func IncrAgentErrors()        { metrics.AgentErrors.Add(1) }
func IncrArxivRequests()      { metrics.ArxivRequests.Add(1) }
func IncrWikipediaRequests()  { metrics.WikipediaRequests.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
