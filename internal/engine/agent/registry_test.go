package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	arxiv := &fakeTool{name: "arxiv", caps: []string{"papers"}, answers: map[string]string{"q": "paper"}}
	wiki := &fakeTool{name: "Wikipedia", caps: []string{"encyclopedia"}}
	r, err := NewRegistry(arxiv, wiki)
	require.NoError(t, err)

	assert.Equal(t, []string{"arxiv", "Wikipedia"}, r.Names())
	assert.Equal(t, []string{"encyclopedia", "papers"}, r.Capabilities())

	got, ok := r.Lookup("  WIKIPEDIA ")
	require.True(t, ok)
	assert.Same(t, wiki, got)

	assert.Equal(t, []Tool{arxiv}, r.WithCapability("Papers"))
	assert.Empty(t, r.WithCapability("video"))

	assert.Equal(t, "arxiv: fake arxiv lookups\nWikipedia: fake Wikipedia lookups", r.Describe())

	out, err := r.Execute(context.Background(), "ARXIV", "q")
	require.NoError(t, err)
	assert.Equal(t, "paper", out)

	_, err = r.Execute(context.Background(), "google", "q")
	assert.True(t, errors.Is(err, ErrUnknownTool))
}

func TestRegistry_ReplaceKeepsOrder(t *testing.T) {
	r, err := NewRegistry(&fakeTool{name: "a"}, &fakeTool{name: "b"})
	require.NoError(t, err)
	replacement := &fakeTool{name: "A"}
	require.NoError(t, r.Register(replacement))

	assert.Equal(t, []string{"A", "b"}, r.Names())
}

func TestRegistry_Invalid(t *testing.T) {
	_, err := NewRegistry(nil)
	assert.ErrorIs(t, err, ErrNilTool)
	_, err = NewRegistry(&fakeTool{name: "  "})
	assert.ErrorIs(t, err, ErrToolNameEmpty)
}

func TestRegistry_CancelledContext(t *testing.T) {
	tool := &fakeTool{name: "a"}
	r, _ := NewRegistry(tool)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Execute(ctx, "a", "x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, tool.calls)
}

func TestDefaultTools(t *testing.T) {
	r := DefaultTools()
	assert.Equal(t, []string{"arxiv", "wikipedia"}, r.Names())
	assert.Len(t, r.WithCapability(CapabilityPapers), 1)
	assert.Len(t, r.WithCapability(CapabilityEncyclopedia), 1)
}
