// Package toolutil provides shared helper functions for go_research MCP tools.
package toolutil

import (
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_research/internal/engine"
	"github.com/anatolykoptev/go_research/internal/engine/agent"
)

// APIKey returns the caller's key, falling back to the server's configured key.
func APIKey(input string) string {
	if key := strings.TrimSpace(input); key != "" {
		return key
	}
	return engine.Cfg.LLMAPIKey
}

// Required fails when a mandatory string field is blank.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// StepsFromEvents converts agent events into the MCP step list.
func StepsFromEvents(events []agent.Event) []engine.StepItem {
	steps := make([]engine.StepItem, 0, len(events))
	for _, e := range events {
		steps = append(steps, engine.StepItem{
			Step:  e.Step,
			Type:  string(e.Type),
			Tool:  e.Tool,
			Input: e.Input,
			Text:  e.Text,
		})
	}
	return steps
}
