package ragloop

import (
	"context"
	"strings"
	"sync"
)

// insufficientInfoAnswer is returned when generation runs without any
// usable context. The generator contract requires an explicit admission
// over fabricated content.
const insufficientInfoAnswer = "I don't have enough relevant information to answer this question."

// callCtx bounds a single collaborator call with the configured step
// timeout. A timeout is absorbed by the calling step like any other
// collaborator failure.
func (p *Pipeline) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.settings.StepTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.settings.StepTimeout)
}

// retrieve fetches the top-k passages for the working question. The passage
// set is replaced wholesale and prior relevance verdicts become stale. A
// retrieval failure degrades to an empty passage set; downstream routing
// handles it.
func (p *Pipeline) retrieve(ctx context.Context, s RunState) (RunState, error) {
	cctx, cancel := p.callCtx(ctx)
	defer cancel()

	passages, err := p.collab.Retriever.Retrieve(cctx, s.Question, p.settings.RetrievalK)
	if err != nil {
		p.logger.Warn("retrieval failed, continuing with empty context",
			"question", s.Question, "error", err.Error())
		passages = nil
	}
	p.logger.Debug("retrieved passages", "count", len(passages))

	s.Passages = passages
	s.RelevanceVerdicts = nil
	return s, nil
}

// gradeDocuments grades every passage for relevance, one verdict per
// passage in passage order. Grading is dispatched to a bounded worker pool
// purely for latency; the verdict slice always aligns with the passage
// slice. An individual grading failure defaults to relevant (fail-open) so
// a transient classifier fault cannot silently drop all context.
func (p *Pipeline) gradeDocuments(ctx context.Context, s RunState) (RunState, error) {
	if len(s.Passages) == 0 {
		s.RelevanceVerdicts = []bool{}
		return s, nil
	}

	verdicts := make([]bool, len(s.Passages))
	workers := p.settings.GradeConcurrency
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, passage := range s.Passages {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			cctx, cancel := p.callCtx(ctx)
			defer cancel()

			relevant, err := p.collab.Relevance.IsRelevant(cctx, s.Question, text)
			if err != nil {
				p.logger.Warn("relevance grading failed, defaulting to relevant",
					"passage", i, "error", err.Error())
				relevant = true
			}
			verdicts[i] = relevant
		}(i, passage.Text)
	}
	wg.Wait()

	p.logger.Debug("graded passages",
		"relevant", countTrue(verdicts), "total", len(verdicts))

	s.RelevanceVerdicts = verdicts
	return s, nil
}

func countTrue(verdicts []bool) int {
	n := 0
	for _, v := range verdicts {
		if v {
			n++
		}
	}
	return n
}

// transformQuery rewrites the working question for better retrievability
// and charges the rewrite budget. A rewriter failure or empty rewrite keeps
// the current question; the budget is charged either way so a broken
// rewriter cannot loop forever. A rewrite invalidates prior hallucination
// history, so the regeneration budget resets.
func (p *Pipeline) transformQuery(ctx context.Context, s RunState) (RunState, error) {
	cctx, cancel := p.callCtx(ctx)
	defer cancel()

	rewritten, err := p.collab.Rewriter.Rewrite(cctx, s.Question)
	if err != nil || strings.TrimSpace(rewritten) == "" {
		if err != nil {
			p.logger.Warn("query rewrite failed, keeping current question", "error", err.Error())
		}
		rewritten = s.Question
	} else {
		p.logger.Debug("rewrote question", "from", s.Question, "to", rewritten)
	}

	s.Question = rewritten
	s.RewriteCount++
	s.RegenerationCount = 0
	return s, nil
}

// webSearch replaces the passage set with external search results. Results
// do not merge with prior local passages. Provider failure or
// unavailability yields an empty passage set, a recoverable condition.
func (p *Pipeline) webSearch(ctx context.Context, s RunState) (RunState, error) {
	var passages []Passage
	if p.collab.Search != nil && p.collab.Search.Available() {
		cctx, cancel := p.callCtx(ctx)
		defer cancel()

		results, err := p.collab.Search.Search(cctx, s.Question)
		if err != nil {
			p.logger.Warn("web search failed, continuing with empty context", "error", err.Error())
		} else {
			passages = results
		}
	} else {
		p.logger.Warn("web search provider unavailable")
	}
	p.logger.Debug("web search results", "count", len(passages))

	s.Passages = passages
	s.RelevanceVerdicts = nil
	s.WebSearchUsed = true
	return s, nil
}

// generate produces an answer from the passages graded relevant (or all
// passages when verdicts are stale, e.g. fresh web search results). Both
// verification verdicts are invalidated: every generation must be
// re-verified. With no usable context the explicit insufficient-information
// answer is returned without calling the generator.
func (p *Pipeline) generate(ctx context.Context, s RunState) (RunState, error) {
	passages := generationPassages(s)

	texts := make([]string, len(passages))
	sources := make([]string, len(passages))
	for i, passage := range passages {
		texts[i] = passage.Text
		sources[i] = passage.SourceID
	}

	var answer string
	if len(texts) == 0 {
		p.logger.Warn("no usable context for generation")
		answer = insufficientInfoAnswer
	} else {
		cctx, cancel := p.callCtx(ctx)
		defer cancel()

		generated, err := p.collab.Generator.Generate(cctx, s.Question, texts)
		if err != nil || strings.TrimSpace(generated) == "" {
			if err != nil {
				p.logger.Warn("generation failed", "error", err.Error())
			}
			generated = insufficientInfoAnswer
		}
		answer = generated
	}

	s.Answer = answer
	s.PassagesUsed = sources
	s.Groundedness = GroundednessUnknown
	s.Usefulness = UsefulnessUnknown
	return s, nil
}

// checkGroundedness verifies the answer against the passages handed to the
// generator. Fail-closed: a classifier error, an empty answer, or an empty
// passage set all yield not_grounded.
func (p *Pipeline) checkGroundedness(ctx context.Context, s RunState) (RunState, error) {
	passages := generationPassages(s)
	texts := make([]string, len(passages))
	for i, passage := range passages {
		texts[i] = passage.Text
	}

	verdict := NotGrounded
	if s.Answer != "" && len(texts) > 0 {
		cctx, cancel := p.callCtx(ctx)
		defer cancel()

		grounded, err := p.collab.Groundedness.IsGrounded(cctx, s.Answer, texts)
		if err != nil {
			p.logger.Warn("groundedness check failed, defaulting to not_grounded", "error", err.Error())
		} else if grounded {
			verdict = Grounded
		}
	}
	p.logger.Debug("groundedness check", "verdict", string(verdict))

	s.Groundedness = verdict
	return s, nil
}

// checkUsefulness verifies the answer resolves the question. Fail-closed:
// a classifier error or missing input yields not_useful.
func (p *Pipeline) checkUsefulness(ctx context.Context, s RunState) (RunState, error) {
	verdict := NotUseful
	if s.Answer != "" && s.Question != "" {
		cctx, cancel := p.callCtx(ctx)
		defer cancel()

		useful, err := p.collab.Usefulness.IsUseful(cctx, s.Question, s.Answer)
		if err != nil {
			p.logger.Warn("usefulness check failed, defaulting to not_useful", "error", err.Error())
		} else if useful {
			verdict = Useful
		}
	}
	p.logger.Debug("usefulness check", "verdict", string(verdict))

	s.Usefulness = verdict
	return s, nil
}
