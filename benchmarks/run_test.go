// Package benchmarks measures pipeline orchestration overhead with
// instant in-process collaborators, isolating the control loop cost from
// LLM and network latency.
package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/randalmurphal/ragloop/pkg/ragloop"
	"github.com/randalmurphal/ragloop/pkg/ragloop/config"
	"github.com/randalmurphal/ragloop/pkg/ragloop/runstore"
)

type benchRetriever struct {
	passages []ragloop.Passage
}

func (r benchRetriever) Retrieve(_ context.Context, _ string, _ int) ([]ragloop.Passage, error) {
	return r.passages, nil
}

type benchGraders struct {
	grounded bool
}

func (g benchGraders) IsRelevant(_ context.Context, _, _ string) (bool, error) { return true, nil }

func (g benchGraders) IsGrounded(_ context.Context, _ string, _ []string) (bool, error) {
	return g.grounded, nil
}

func (g benchGraders) IsUseful(_ context.Context, _, _ string) (bool, error) { return true, nil }

type benchRewriter struct{}

func (benchRewriter) Rewrite(_ context.Context, q string) (string, error) { return q, nil }

type benchGenerator struct{}

func (benchGenerator) Generate(_ context.Context, _ string, passages []string) (string, error) {
	return fmt.Sprintf("answer from %d passages", len(passages)), nil
}

func passages(n int) []ragloop.Passage {
	out := make([]ragloop.Passage, n)
	for i := range out {
		out[i] = ragloop.Passage{
			Text:     fmt.Sprintf("passage %d", i),
			SourceID: fmt.Sprintf("doc-%d", i),
		}
	}
	return out
}

func newBenchPipeline(b *testing.B, grounded bool, opts ...ragloop.Option) *ragloop.Pipeline {
	b.Helper()
	pipe, err := ragloop.New(ragloop.Collaborators{
		Retriever:    benchRetriever{passages: passages(4)},
		Relevance:    benchGraders{grounded: grounded},
		Groundedness: benchGraders{grounded: grounded},
		Usefulness:   benchGraders{grounded: grounded},
		Rewriter:     benchRewriter{},
		Generator:    benchGenerator{},
	}, opts...)
	if err != nil {
		b.Fatal(err)
	}
	return pipe
}

// BenchmarkRun_HappyPath measures the 5-step clean run.
func BenchmarkRun_HappyPath(b *testing.B) {
	pipe := newBenchPipeline(b, true)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = pipe.Run(ctx, "benchmark question")
	}
}

// BenchmarkRun_RegenerationLoop measures a run that exhausts the
// regeneration budget before terminating.
func BenchmarkRun_RegenerationLoop(b *testing.B) {
	pipe := newBenchPipeline(b, false)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = pipe.Run(ctx, "benchmark question")
	}
}

// BenchmarkRun_WideGrading measures per-passage grading fan-out cost.
func BenchmarkRun_WideGrading(b *testing.B) {
	for _, n := range []int{4, 16, 64} {
		b.Run(fmt.Sprintf("passages_%d", n), func(b *testing.B) {
			settings := config.Defaults()
			settings.RetrievalK = n
			pipe, err := ragloop.New(ragloop.Collaborators{
				Retriever:    benchRetriever{passages: passages(n)},
				Relevance:    benchGraders{grounded: true},
				Groundedness: benchGraders{grounded: true},
				Usefulness:   benchGraders{grounded: true},
				Rewriter:     benchRewriter{},
				Generator:    benchGenerator{},
			}, ragloop.WithSettings(settings))
			if err != nil {
				b.Fatal(err)
			}
			ctx := context.Background()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = pipe.Run(ctx, "benchmark question")
			}
		})
	}
}

// BenchmarkRun_WithMemoryTrace measures run-trace persistence overhead.
func BenchmarkRun_WithMemoryTrace(b *testing.B) {
	store := runstore.NewMemoryStore()
	defer store.Close()

	pipe := newBenchPipeline(b, true, ragloop.WithRunStore(store))
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = pipe.Run(ctx, "benchmark question")
	}
}

// BenchmarkStream measures streaming event delivery overhead.
func BenchmarkStream(b *testing.B) {
	pipe := newBenchPipeline(b, true)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		events, err := pipe.Stream(ctx, "benchmark question")
		if err != nil {
			b.Fatal(err)
		}
		for range events {
		}
	}
}
