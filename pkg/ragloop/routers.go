package ragloop

import "github.com/randalmurphal/ragloop/pkg/ragloop/config"

// Routing policies are pure functions from run state to the next step.
// Given identical state and settings they always return the same step; all
// counter mutation happens in steps or in the pipeline loop, never here.

// afterGrading decides the step following GradeDocuments.
//
// Decision tree on the relevant ratio (fraction of passages graded
// relevant, 0 when no verdicts exist):
//   - ratio == 0, rewrites left: rewrite the query and retrieve again.
//   - ratio == 0, rewrite budget exhausted: fall back to web search if it
//     has not been used yet, otherwise generate a best-effort answer from
//     whatever context exists (the generator produces an explicit
//     insufficient-information answer on empty context).
//   - 0 < ratio < threshold: local context is thin, augment via web search.
//   - ratio >= threshold: generate.
func afterGrading(cfg config.Settings, s RunState) Step {
	ratio := relevantRatio(s.RelevanceVerdicts)

	if ratio == 0 {
		if s.RewriteCount < cfg.MaxRewrites {
			return StepTransformQuery
		}
		if !s.WebSearchUsed {
			return StepWebSearch
		}
		return StepGenerate
	}

	if ratio < cfg.WebSearchThreshold {
		return StepWebSearch
	}
	return StepGenerate
}

// afterVerification decides the step following the verification checks.
//
// Groundedness takes priority over usefulness: an ungrounded answer is
// regenerated while the regeneration budget lasts, then returned as-is
// rather than discarded. A grounded but unuseful answer triggers a full
// loop restart through a query rewrite while the rewrite budget lasts.
// A grounded and useful answer terminates the run.
func afterVerification(cfg config.Settings, s RunState) Step {
	if s.Groundedness == NotGrounded {
		if s.RegenerationCount < cfg.MaxRegenerations {
			return StepGenerate
		}
		return stepEnd
	}

	if s.Usefulness == NotUseful {
		if s.RewriteCount < cfg.MaxRewrites {
			return StepTransformQuery
		}
		return stepEnd
	}

	return stepEnd
}
