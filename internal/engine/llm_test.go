package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMFor_MissingKey(t *testing.T) {
	called := false
	Init(Config{LLMFactory: func(string) (Completer, error) {
		called = true
		return nil, nil
	}})

	for _, key := range []string{"", "   ", "\t\n"} {
		c, err := LLMFor(key)
		assert.Nil(t, c)
		assert.True(t, errors.Is(err, ErrMissingCredential), "key %q: %v", key, err)
	}
	assert.False(t, called, "factory must not be reached without a key")
}

func TestLLMFor_UsesFactory(t *testing.T) {
	var gotKey string
	Init(Config{LLMFactory: func(key string) (Completer, error) {
		gotKey = key
		return CompleterFunc(func(context.Context, string, string) (string, error) { return "ok", nil }), nil
	}})

	c, err := LLMFor("gsk_test")
	require.NoError(t, err)
	assert.Equal(t, "gsk_test", gotKey)

	out, err := CallLLM(context.Background(), c, "", "ping")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestNewLLM_MissingKey(t *testing.T) {
	_, err := NewLLM(" ")
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestCallLLM(t *testing.T) {
	Init(Config{})
	before := GetMetrics()

	c := CompleterFunc(func(_ context.Context, system, prompt string) (string, error) {
		return "  padded answer \n", nil
	})
	out, err := CallLLM(context.Background(), c, "", "q")
	require.NoError(t, err)
	assert.Equal(t, "padded answer", out)

	failing := CompleterFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("rate limited")
	})
	_, err = CallLLM(context.Background(), failing, "", "q")
	assert.EqualError(t, err, "rate limited")

	after := GetMetrics()
	assert.Equal(t, before["llm_calls"]+2, after["llm_calls"])
	assert.Equal(t, before["llm_errors"]+1, after["llm_errors"])
}

func TestFormatMetrics(t *testing.T) {
	out := FormatMetrics()
	for _, k := range metricKeys {
		assert.Contains(t, out, k+" ")
	}
}
