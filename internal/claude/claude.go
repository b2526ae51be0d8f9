package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultModel = "claude-sonnet-4-5"
	maxTokens    = 4096
)

// TaskSummary is the minimal task info sent to Claude for dependency inference.
type TaskSummary struct {
	Name         string   `json:"name"`
	Expected     float64  `json:"expected_duration"`
	Predecessors []string `json:"predecessors,omitempty"`
}

// DepEdge is a single inferred dependency.
type DepEdge struct {
	Task        string `json:"task"`        // task that waits
	Predecessor string `json:"predecessor"` // task that must finish first
	Reason      string `json:"reason"`
}

// InferDepsResult holds the full response from Claude.
type InferDepsResult struct {
	Edges   []DepEdge `json:"edges"`
	Summary string    `json:"summary"`
}

// Client asks Claude for dependency proposals.
type Client struct {
	messages *anthropic.MessageService
	model    anthropic.Model
}

// NewClient creates a Claude client for model, falling back to DefaultModel.
// An empty apiKey is read from ANTHROPIC_API_KEY. Extra options are passed to
// the SDK, after the key.
func NewClient(apiKey, model string, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}
	if model == "" {
		model = DefaultModel
	}

	inner := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &Client{messages: &inner.Messages, model: anthropic.Model(model)}, nil
}

const systemPrompt = `You are an experienced project planner. You receive the tasks of one project with their expected durations and the dependencies already declared between them, and you propose the dependency edges that are missing.

Rules:
- Only add a dependency when there is a strong causal reason (the task cannot start until the predecessor is complete).
- Prefer fewer edges. Do not add transitive or speculative dependencies.
- Never repeat a declared dependency and never create a cycle with the declared ones.
- Only use task names from the provided list, spelled exactly.
- A task cannot depend on itself.

Answer with a single JSON object and nothing else:
{
  "edges": [
    {"task": "<task that waits>", "predecessor": "<task that must finish first>", "reason": "<short explanation>"}
  ],
  "summary": "<one paragraph summary of the dependency structure>"
}`

// buildPrompt renders the user message: the task list and, separately, every
// declared edge so the model can avoid repeating or reversing them.
func buildPrompt(tasks []TaskSummary) (string, error) {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tasks: %w", err)
	}

	var b strings.Builder
	b.WriteString("Tasks:\n")
	b.Write(data)
	b.WriteString("\n\nDeclared dependencies:\n")
	declared := 0
	for _, t := range tasks {
		for _, p := range t.Predecessors {
			fmt.Fprintf(&b, "- %s after %s\n", t.Name, p)
			declared++
		}
	}
	if declared == 0 {
		b.WriteString("- none\n")
	}
	return b.String(), nil
}

// InferDeps asks Claude for missing dependencies between tasks. The result
// is not validated; run it through Filter before use.
func (c *Client) InferDeps(ctx context.Context, tasks []TaskSummary) (*InferDepsResult, error) {
	prompt, err := buildPrompt(tasks)
	if err != nil {
		return nil, err
	}

	resp, err := c.messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude API call: %w", err)
	}
	if resp.StopReason == anthropic.StopReasonMaxTokens {
		return nil, fmt.Errorf("claude response truncated at %d tokens", maxTokens)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return ParseResult(text.String())
}

// ParseResult decodes a dependency inference response. Text around the JSON
// object, such as markdown fences, is ignored.
func ParseResult(text string) (*InferDepsResult, error) {
	body := extractJSON(text)
	if body == "" {
		return nil, fmt.Errorf("parse claude response: no JSON object in %q", text)
	}

	var result InferDepsResult
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return nil, fmt.Errorf("parse claude response: %w", err)
	}
	return &result, nil
}

// extractJSON returns the span from the first '{' to the last '}', or "" when
// there is none.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
