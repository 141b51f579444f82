package main

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/anatolykoptev/go_research/internal/engine"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"LLM_API_KEY", "LLM_API_BASE", "LLM_MODEL", "MIN_CONTENT_CHARS", "WIKI_LANG", "CAPTION_TIMEOUT"} {
		t.Setenv(k, "")
	}
	c := loadConfig(overrides{})
	assert.Empty(t, c.LLMAPIKey)
	assert.Equal(t, engine.DefaultLLMAPIBase, c.LLMAPIBase)
	assert.Equal(t, engine.DefaultLLMModel, c.LLMModel)
	assert.Equal(t, engine.DefaultMinContentChars, c.MinContentChars)
	assert.Equal(t, 10*time.Second, c.CaptionTimeout)
	assert.Equal(t, "en", c.WikiLang)
	assert.NotNil(t, c.HTTPClient)
}

func TestLoadConfig_EnvAndFlags(t *testing.T) {
	t.Setenv("LLM_API_KEY", "env-key")
	t.Setenv("LLM_MODEL", "env-model")
	t.Setenv("WIKI_LANG", "de")
	t.Setenv("AGENT_MAX_STEPS", "3")

	c := loadConfig(overrides{})
	assert.Equal(t, "env-key", c.LLMAPIKey)
	assert.Equal(t, "env-model", c.LLMModel)
	assert.Equal(t, "de", c.WikiLang)
	assert.Equal(t, 3, c.AgentMaxSteps)

	c = loadConfig(overrides{apiKey: "flag-key", model: "flag-model"})
	assert.Equal(t, "flag-key", c.LLMAPIKey)
	assert.Equal(t, "flag-model", c.LLMModel)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel(" WARN "))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}

func TestNewLoggerHighlightsErrors(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "info")
	log.Debug("hidden")
	log.Info("visible", slog.Any("error", errors.New("boom")))
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "boom")
}
