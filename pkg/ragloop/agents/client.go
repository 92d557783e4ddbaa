// Package agents provides LLM-backed collaborators for the ragloop
// pipeline: the three binary graders, the query rewriter, and the answer
// generator, all driven through the Anthropic Messages API.
//
// Graders follow a strict protocol: the model is asked for a JSON object
// with a single "score" key valued "yes" or "no", at temperature zero.
// Responses that are not valid JSON fall back to a case-insensitive scan
// for a leading yes/no token.
package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Default model identifiers. Grading is high-volume and latency-sensitive,
// so it defaults to a small model; generation defaults to a stronger one.
const (
	DefaultGenerationModel = "claude-sonnet-4-5"
	DefaultGradingModel    = "claude-3-5-haiku-latest"
)

const (
	graderMaxTokens    = 64
	generatorMaxTokens = 1024
)

// MessagesClient captures the subset of the Anthropic SDK client the agents
// use. It is satisfied by *sdk.MessageService so callers can pass either a
// real client or a mock in tests.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// NewMessagesClient constructs a real Anthropic messages client from an API
// key.
func NewMessagesClient(apiKey string) (MessagesClient, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	ac := sdk.NewClient(option.WithAPIKey(apiKey))
	return &ac.Messages, nil
}

// complete issues one single-turn completion and returns the concatenated
// text blocks of the response.
func complete(ctx context.Context, msg MessagesClient, model, prompt string, maxTokens int64) (string, error) {
	resp, err := msg.New(ctx, sdk.MessageNewParams{
		MaxTokens:   maxTokens,
		Model:       sdk.Model(model),
		Temperature: sdk.Float(0),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages.new: %w", err)
	}
	if resp == nil {
		return "", errors.New("anthropic: response message is nil")
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// binaryScore is the grader response envelope.
type binaryScore struct {
	Score string `json:"score"`
}

// parseScore extracts a yes/no verdict from a grader response. It prefers
// the JSON envelope and falls back to scanning the raw text for a leading
// yes/no token, since smaller models occasionally wrap the JSON in prose.
func parseScore(raw string) (bool, error) {
	trimmed := strings.TrimSpace(raw)

	var score binaryScore
	if err := json.Unmarshal([]byte(trimmed), &score); err == nil {
		return scoreValue(score.Score)
	}

	// Look for an embedded JSON object before giving up on the envelope.
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			if err := json.Unmarshal([]byte(trimmed[start:end+1]), &score); err == nil {
				return scoreValue(score.Score)
			}
		}
	}

	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "yes") {
		return true, nil
	}
	if strings.HasPrefix(lower, "no") {
		return false, nil
	}
	return false, fmt.Errorf("unparseable grader response: %q", raw)
}

func scoreValue(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}
	return false, fmt.Errorf("unexpected score value: %q", s)
}
