package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMAPIKey            string
	LLMAPIKeyFallbacks   []string
	LLMAPIBase           string
	LLMModel             string
	LLMTemperature       float64
	LLMMaxTokens         int
	MaxContentChars      int // summarizer input cap, runes
	MinContentChars      int // extraction below this counts as failure
	FetchTimeout         time.Duration
	CaptionTimeout       time.Duration // per-call timeout on caption downloads
	AgentMaxSteps        int
	WikiLang             string
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client
	LLMFactory           LLMFactory // nil = NewLLM
}

// Defaults applied by Init for zero-valued fields.
const (
	DefaultLLMAPIBase      = "https://api.groq.com/openai/v1"
	DefaultLLMModel        = "llama-3.1-8b-instant"
	DefaultMaxContentChars = 24000
	DefaultMinContentChars = 200
	DefaultAgentMaxSteps   = 8
)

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources, digest, agent).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.LLMAPIBase == "" {
		c.LLMAPIBase = DefaultLLMAPIBase
	}
	if c.LLMModel == "" {
		c.LLMModel = DefaultLLMModel
	}
	if c.MaxContentChars <= 0 {
		c.MaxContentChars = DefaultMaxContentChars
	}
	if c.MinContentChars <= 0 {
		c.MinContentChars = DefaultMinContentChars
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Second
	}
	if c.CaptionTimeout <= 0 {
		c.CaptionTimeout = 10 * time.Second
	}
	if c.AgentMaxSteps <= 0 {
		c.AgentMaxSteps = DefaultAgentMaxSteps
	}
	if c.WikiLang == "" {
		c.WikiLang = "en"
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	cfg = c
	Cfg = &cfg
}
