package agents

import (
	"context"
	"fmt"
	"strings"
)

// RelevanceGrader classifies passage relevance to a question.
type RelevanceGrader struct {
	msg   MessagesClient
	model string
}

// NewRelevanceGrader creates a relevance grader. An empty model defaults to
// DefaultGradingModel.
func NewRelevanceGrader(msg MessagesClient, model string) *RelevanceGrader {
	if model == "" {
		model = DefaultGradingModel
	}
	return &RelevanceGrader{msg: msg, model: model}
}

// IsRelevant reports whether the passage is relevant to the question.
func (g *RelevanceGrader) IsRelevant(ctx context.Context, question, passage string) (bool, error) {
	prompt := fmt.Sprintf(relevanceGraderPrompt, passage, question)
	raw, err := complete(ctx, g.msg, g.model, prompt, graderMaxTokens)
	if err != nil {
		return false, err
	}
	return parseScore(raw)
}

// GroundednessGrader classifies whether an answer is supported by a set of
// passages.
type GroundednessGrader struct {
	msg   MessagesClient
	model string
}

// NewGroundednessGrader creates a groundedness grader. An empty model
// defaults to DefaultGradingModel.
func NewGroundednessGrader(msg MessagesClient, model string) *GroundednessGrader {
	if model == "" {
		model = DefaultGradingModel
	}
	return &GroundednessGrader{msg: msg, model: model}
}

// IsGrounded reports whether every claim in the answer is supported by the
// passages.
func (g *GroundednessGrader) IsGrounded(ctx context.Context, answer string, passages []string) (bool, error) {
	prompt := fmt.Sprintf(groundednessGraderPrompt, joinPassages(passages), answer)
	raw, err := complete(ctx, g.msg, g.model, prompt, graderMaxTokens)
	if err != nil {
		return false, err
	}
	return parseScore(raw)
}

// UsefulnessGrader classifies whether an answer resolves a question.
type UsefulnessGrader struct {
	msg   MessagesClient
	model string
}

// NewUsefulnessGrader creates a usefulness grader. An empty model defaults
// to DefaultGradingModel.
func NewUsefulnessGrader(msg MessagesClient, model string) *UsefulnessGrader {
	if model == "" {
		model = DefaultGradingModel
	}
	return &UsefulnessGrader{msg: msg, model: model}
}

// IsUseful reports whether the answer resolves the question.
func (g *UsefulnessGrader) IsUseful(ctx context.Context, question, answer string) (bool, error) {
	prompt := fmt.Sprintf(usefulnessGraderPrompt, question, answer)
	raw, err := complete(ctx, g.msg, g.model, prompt, graderMaxTokens)
	if err != nil {
		return false, err
	}
	return parseScore(raw)
}

// joinPassages formats passages as a numbered fact list for grader prompts.
func joinPassages(passages []string) string {
	var sb strings.Builder
	for i, p := range passages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%d] %s", i+1, p)
	}
	return sb.String()
}
