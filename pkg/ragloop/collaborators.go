package ragloop

import "context"

// The pipeline consumes its collaborators through narrow interfaces so that
// retrieval, grading, generation, and search backends can be swapped or
// stubbed independently. Collaborator calls are treated as blocking,
// potentially slow, remote operations: the pipeline applies a per-call
// timeout and absorbs failures into verdicts (fail-open for relevance
// grading, fail-closed for verification) instead of surfacing them as run
// errors.

// Retriever returns the top-k candidate passages for a query. An empty
// result set is a valid response, not an error.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]Passage, error)
}

// RelevanceGrader classifies whether a single passage is relevant to the
// question.
type RelevanceGrader interface {
	IsRelevant(ctx context.Context, question, passage string) (bool, error)
}

// GroundednessGrader classifies whether an answer's claims are supported by
// the supplied passages.
type GroundednessGrader interface {
	IsGrounded(ctx context.Context, answer string, passages []string) (bool, error)
}

// UsefulnessGrader classifies whether an answer resolves the question,
// independent of factual grounding.
type UsefulnessGrader interface {
	IsUseful(ctx context.Context, question, answer string) (bool, error)
}

// QueryRewriter reformulates a question to improve retrievability while
// preserving its intent. Implementations must return a non-empty string;
// when unable to improve the question they return it unchanged.
type QueryRewriter interface {
	Rewrite(ctx context.Context, question string) (string, error)
}

// Generator produces an answer from a question and supporting passages. On
// an empty passage set implementations must return an explicit
// insufficient-information answer rather than fabricate content.
type Generator interface {
	Generate(ctx context.Context, question string, passages []string) (string, error)
}

// SearchProvider retrieves passages from an external web source. Provider
// unavailability is a recoverable condition, not an error: Available
// reports whether a search backend is configured at all.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]Passage, error)
	Available() bool
}

// Collaborators bundles the external services a Pipeline drives. Retriever,
// the three graders, Rewriter, and Generator are required; Search is
// optional and its absence simply disables the web-search fallback.
type Collaborators struct {
	Retriever    Retriever
	Relevance    RelevanceGrader
	Groundedness GroundednessGrader
	Usefulness   UsefulnessGrader
	Rewriter     QueryRewriter
	Generator    Generator
	Search       SearchProvider
}
