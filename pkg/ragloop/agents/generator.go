package agents

import (
	"context"
	"fmt"
	"strings"
)

// Generator produces concise answers from retrieved context.
type Generator struct {
	msg   MessagesClient
	model string
}

// NewGenerator creates an answer generator. An empty model defaults to
// DefaultGenerationModel.
func NewGenerator(msg MessagesClient, model string) *Generator {
	if model == "" {
		model = DefaultGenerationModel
	}
	return &Generator{msg: msg, model: model}
}

// Generate answers the question from the given passages. Callers decide how
// to handle an empty passage set; given one, the prompt instructs the model
// to admit it does not know rather than fabricate.
func (g *Generator) Generate(ctx context.Context, question string, passages []string) (string, error) {
	prompt := fmt.Sprintf(ragPrompt, question, joinPassages(passages))
	return complete(ctx, g.msg, g.model, prompt, generatorMaxTokens)
}

// Rewriter reformulates questions for better vectorstore retrieval.
type Rewriter struct {
	msg   MessagesClient
	model string
}

// NewRewriter creates a query rewriter. An empty model defaults to
// DefaultGradingModel.
func NewRewriter(msg MessagesClient, model string) *Rewriter {
	if model == "" {
		model = DefaultGradingModel
	}
	return &Rewriter{msg: msg, model: model}
}

// Rewrite returns an improved version of the question. When the model
// produces an empty rewrite the original question is returned unchanged.
func (r *Rewriter) Rewrite(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf(queryRewriterPrompt, question)
	rewritten, err := complete(ctx, r.msg, r.model, prompt, graderMaxTokens*4)
	if err != nil {
		return "", err
	}
	rewritten = strings.Trim(strings.TrimSpace(rewritten), `"`)
	if rewritten == "" {
		return question, nil
	}
	return rewritten, nil
}

// SearchQueryOptimizer condenses a question into a short web search query.
type SearchQueryOptimizer struct {
	msg   MessagesClient
	model string
}

// NewSearchQueryOptimizer creates a search query optimizer. An empty model
// defaults to DefaultGradingModel.
func NewSearchQueryOptimizer(msg MessagesClient, model string) *SearchQueryOptimizer {
	if model == "" {
		model = DefaultGradingModel
	}
	return &SearchQueryOptimizer{msg: msg, model: model}
}

// Optimize returns a concise search-engine query for the question. On an
// empty result the original question is returned unchanged.
func (o *SearchQueryOptimizer) Optimize(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf(searchQueryPrompt, question)
	query, err := complete(ctx, o.msg, o.model, prompt, graderMaxTokens)
	if err != nil {
		return "", err
	}
	query = strings.Trim(strings.TrimSpace(query), `"`)
	if query == "" {
		return question, nil
	}
	return query, nil
}
