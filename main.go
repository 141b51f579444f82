// go_research: ArXiv/Wikipedia research chat agent and YouTube/web page summarizer.
//
// Commands: chat (interactive agent), summarize <url> (one-shot summary),
// serve (MCP server exposing research_ask and summarize_url).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_research/internal/chat"
	"github.com/anatolykoptev/go_research/internal/engine"
	"github.com/anatolykoptev/go_research/internal/engine/agent"
	"github.com/anatolykoptev/go_research/internal/engine/digest"
	"github.com/anatolykoptev/go_research/internal/researchserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var version = "dev"

// overrides holds per-invocation flag values applied on top of the environment.
type overrides struct {
	apiKey string
	model  string
}

func main() {
	slog.SetDefault(newLogger(os.Stderr, env.Str("LOG_LEVEL", "info")))

	var o overrides
	root := &cobra.Command{
		Use:           "go_research",
		Short:         "Research chat agent and video/web page summarizer",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			initEngine(o)
		},
	}
	root.PersistentFlags().StringVar(&o.apiKey, "api-key", "", "LLM provider API key (default $LLM_API_KEY)")
	root.PersistentFlags().StringVar(&o.model, "model", "", "LLM model (default $LLM_MODEL)")

	root.AddCommand(chatCMD(), summarizeCMD(), serveCMD())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}

func chatCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the ArXiv/Wikipedia research agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := chat.NewRenderer(cmd.OutOrStdout(), "> ")
			s := agent.NewSession(engine.Cfg.LLMAPIKey, nil, r)
			return chat.Start(cmd.Context(), cmd.InOrStdin(), r, s, digest.Summarize)
		},
	}
}

func summarizeCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <url>",
		Short: "Summarize a YouTube video or web page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := digest.Summarize(cmd.Context(), args[0], engine.Cfg.LLMAPIKey)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(engine.FormatSummary(s)))
			return err
		},
	}
}

func serveCMD() *cobra.Command {
	var port string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			slog.Info("starting go_research", slog.String("port", port))

			server := mcp.NewServer(&mcp.Implementation{
				Name:    "go_research",
				Version: version,
			}, nil)

			researchserver.RegisterTools(server)
			slog.Info("tools registered", slog.Int("count", researchserver.ToolCount))

			return mcpserver.Run(server, mcpserver.Config{
				Name:         "go_research",
				Version:      version,
				Port:         port,
				WriteTimeout: 600 * time.Second,
				Metrics:      engine.FormatMetrics,
			})
		},
	}
	serve.Flags().StringVar(&port, "port", env.Str("MCP_PORT", "8891"), "MCP listen port")
	return serve
}

func loadConfig(o overrides) engine.Config {
	c := engine.Config{
		LLMAPIKey:            env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:   env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:           env.Str("LLM_API_BASE", engine.DefaultLLMAPIBase),
		LLMModel:             env.Str("LLM_MODEL", engine.DefaultLLMModel),
		LLMTemperature:       env.Float("LLM_TEMPERATURE", 0),
		LLMMaxTokens:         env.Int("LLM_MAX_TOKENS", 1024),
		MaxContentChars:      env.Int("MAX_CONTENT_CHARS", engine.DefaultMaxContentChars),
		MinContentChars:      env.Int("MIN_CONTENT_CHARS", engine.DefaultMinContentChars),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 15*time.Second),
		CaptionTimeout:       env.Duration("CAPTION_TIMEOUT", 10*time.Second),
		AgentMaxSteps:        env.Int("AGENT_MAX_STEPS", engine.DefaultAgentMaxSteps),
		WikiLang:             env.Str("WIKI_LANG", "en"),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
	if o.apiKey != "" {
		c.LLMAPIKey = o.apiKey
	}
	if o.model != "" {
		c.LLMModel = o.model
	}
	return c
}

func initEngine(o overrides) {
	c := loadConfig(o)
	engine.Init(c)
	slog.Debug("engine initialized",
		slog.String("llm_base", c.LLMAPIBase),
		slog.String("model", c.LLMModel),
		slog.Bool("api_key", c.LLMAPIKey != ""),
	)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}
