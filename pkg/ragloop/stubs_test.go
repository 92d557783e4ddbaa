package ragloop_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/randalmurphal/ragloop/pkg/ragloop"
)

// stubRetriever returns a fixed passage set or error.
type stubRetriever struct {
	mu       sync.Mutex
	passages []ragloop.Passage
	err      error
	calls    int
}

func (r *stubRetriever) Retrieve(_ context.Context, _ string, _ int) ([]ragloop.Passage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.passages, nil
}

// stubRelevance grades with a fixed verdict or per-passage map keyed by
// passage text.
type stubRelevance struct {
	verdict    bool
	perPassage map[string]bool
	err        error
}

func (g *stubRelevance) IsRelevant(_ context.Context, _, passage string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.perPassage != nil {
		if v, ok := g.perPassage[passage]; ok {
			return v, nil
		}
	}
	return g.verdict, nil
}

// scriptedGrounded returns scripted verdicts in call order, repeating the
// last verdict once the script is exhausted.
type scriptedGrounded struct {
	mu      sync.Mutex
	script  []bool
	err     error
	calls   int
	panicOn bool
}

func (g *scriptedGrounded) IsGrounded(_ context.Context, _ string, _ []string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.panicOn {
		panic("grader exploded")
	}
	i := g.calls
	g.calls++
	if g.err != nil {
		return false, g.err
	}
	if len(g.script) == 0 {
		return true, nil
	}
	if i >= len(g.script) {
		i = len(g.script) - 1
	}
	return g.script[i], nil
}

type scriptedUseful struct {
	mu     sync.Mutex
	script []bool
	err    error
	calls  int
}

func (g *scriptedUseful) IsUseful(_ context.Context, _, _ string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.calls
	g.calls++
	if g.err != nil {
		return false, g.err
	}
	if len(g.script) == 0 {
		return true, nil
	}
	if i >= len(g.script) {
		i = len(g.script) - 1
	}
	return g.script[i], nil
}

// stubRewriter appends a marker so rewrites are observable.
type stubRewriter struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (r *stubRewriter) Rewrite(_ context.Context, question string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return fmt.Sprintf("%s (rewrite %d)", question, r.calls), nil
}

// stubGenerator echoes the context size so tests can assert on filtering.
type stubGenerator struct {
	mu     sync.Mutex
	answer string
	err    error
	calls  int
}

func (g *stubGenerator) Generate(_ context.Context, question string, passages []string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if g.answer != "" {
		return g.answer, nil
	}
	return fmt.Sprintf("answer to %q from %d passages", question, len(passages)), nil
}

// stubSearch returns fixed passages; available unless disabled.
type stubSearch struct {
	mu          sync.Mutex
	passages    []ragloop.Passage
	err         error
	unavailable bool
	calls       int
}

func (s *stubSearch) Search(_ context.Context, _ string) ([]ragloop.Passage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.passages, nil
}

func (s *stubSearch) Available() bool { return !s.unavailable }

var errBackend = errors.New("backend unavailable")

func passageSet(n int) []ragloop.Passage {
	out := make([]ragloop.Passage, n)
	for i := range out {
		out[i] = ragloop.Passage{
			Text:     fmt.Sprintf("passage %d", i),
			SourceID: fmt.Sprintf("doc-%d", i),
		}
	}
	return out
}

// happyCollaborators returns collaborators that succeed on every call.
func happyCollaborators() ragloop.Collaborators {
	return ragloop.Collaborators{
		Retriever:    &stubRetriever{passages: passageSet(4)},
		Relevance:    &stubRelevance{verdict: true},
		Groundedness: &scriptedGrounded{},
		Usefulness:   &scriptedUseful{},
		Rewriter:     &stubRewriter{},
		Generator:    &stubGenerator{},
		Search:       &stubSearch{passages: passageSet(2)},
	}
}
