package ragloop

// Step identifies a pipeline step. The set of steps is closed: routing
// returns values from this enumeration only, so an invalid transition is a
// compile-time mistake rather than a runtime string mismatch.
type Step string

// Pipeline steps.
const (
	StepRetrieve          Step = "retrieve"
	StepGradeDocuments    Step = "grade_documents"
	StepTransformQuery    Step = "transform_query"
	StepWebSearch         Step = "web_search"
	StepGenerate          Step = "generate"
	StepCheckGroundedness Step = "check_groundedness"
	StepCheckUsefulness   Step = "check_usefulness"

	// stepEnd is the terminal routing signal. It is not a real step and is
	// never executed.
	stepEnd Step = "__end__"
)

// Groundedness is the verdict of the groundedness check on a generated
// answer. The zero value is GroundednessUnknown.
type Groundedness string

// Groundedness verdicts.
const (
	GroundednessUnknown Groundedness = ""
	Grounded            Groundedness = "grounded"
	NotGrounded         Groundedness = "not_grounded"
)

// Usefulness is the verdict of the usefulness check on a generated answer.
// The zero value is UsefulnessUnknown.
type Usefulness string

// Usefulness verdicts.
const (
	UsefulnessUnknown Usefulness = ""
	Useful            Usefulness = "useful"
	NotUseful         Usefulness = "not_useful"
)

// ErrorCode identifies a forced-termination condition in a Result.
type ErrorCode string

// ErrCodeStepCeiling is set when the global step ceiling was exceeded and
// the run was aborted with a fallback answer.
const ErrCodeStepCeiling ErrorCode = "step_ceiling_exceeded"

// Passage is a retrieved text chunk with its source identifier.
type Passage struct {
	Text     string `json:"text"`
	SourceID string `json:"source_id"`
}

// RunState is the mutable record threaded through every step of one
// invocation. It is owned exclusively by the pipeline for the lifetime of a
// single Run or Stream call and is never shared across invocations. Steps
// receive it by value and return an updated copy.
type RunState struct {
	// Question is the current working query. TransformQuery overwrites it.
	Question string `json:"question"`

	// OriginalQuestion is the caller's question, retained for fallback
	// messaging. Immutable after initialization.
	OriginalQuestion string `json:"original_question"`

	// Answer is empty until the first Generate and may be overwritten on
	// regeneration.
	Answer string `json:"answer"`

	// Passages is replaced wholesale by Retrieve or WebSearch, never
	// partially mutated.
	Passages []Passage `json:"passages"`

	// RelevanceVerdicts holds one verdict per passage, in passage order.
	// Produced only by GradeDocuments; stale after a new Retrieve.
	RelevanceVerdicts []bool `json:"relevance_verdicts"`

	// PassagesUsed records the source IDs of the passages handed to the
	// generator on the most recent Generate.
	PassagesUsed []string `json:"passages_used"`

	// RewriteCount is incremented only by TransformQuery.
	RewriteCount int `json:"rewrite_count"`

	// RegenerationCount is incremented only when Generate runs in response
	// to a groundedness failure, and reset to 0 whenever a rewrite occurs.
	RegenerationCount int `json:"regeneration_count"`

	// Groundedness is set only by CheckGroundedness and invalidated back to
	// unknown by every Generate.
	Groundedness Groundedness `json:"groundedness_verdict"`

	// Usefulness is set only by CheckUsefulness and invalidated back to
	// unknown by every Generate.
	Usefulness Usefulness `json:"usefulness_verdict"`

	// WebSearchUsed is set true by WebSearch and never reset within one
	// invocation.
	WebSearchUsed bool `json:"web_search_used"`

	// ErrorCode is set only by the pipeline on forced termination.
	ErrorCode ErrorCode `json:"error,omitempty"`
}

// newRunState initializes the state for one invocation.
func newRunState(question string) RunState {
	return RunState{
		Question:         question,
		OriginalQuestion: question,
	}
}

// degraded reports whether the run terminated without passing every
// verification gate. A clean success is grounded, useful, and error-free.
func (s RunState) degraded() bool {
	return s.ErrorCode != "" || s.Groundedness != Grounded || s.Usefulness != Useful
}

// relevantRatio is the fraction of passages graded relevant, defined as 0
// when no verdicts exist.
func relevantRatio(verdicts []bool) float64 {
	if len(verdicts) == 0 {
		return 0
	}
	relevant := 0
	for _, v := range verdicts {
		if v {
			relevant++
		}
	}
	return float64(relevant) / float64(len(verdicts))
}

// generationPassages returns the passages Generate should hand to the
// generator: only those graded relevant when the verdicts align with the
// current passage set, or all passages when the verdicts are stale or
// absent (fresh web search results are never graded).
func generationPassages(s RunState) []Passage {
	if len(s.RelevanceVerdicts) != len(s.Passages) {
		return s.Passages
	}
	var out []Passage
	for i, p := range s.Passages {
		if s.RelevanceVerdicts[i] {
			out = append(out, p)
		}
	}
	return out
}

// Result is the structured record returned to the caller. The caller always
// receives a Result from a started run; Degraded and Err distinguish a clean
// success from a bounded-recovery outcome from a forced abort.
type Result struct {
	Answer            string       `json:"answer"`
	PassagesUsed      []string     `json:"passages_used"`
	RewriteCount      int          `json:"rewrite_count"`
	RegenerationCount int          `json:"regeneration_count"`
	WebSearchUsed     bool         `json:"web_search_used"`
	Groundedness      Groundedness `json:"groundedness_verdict"`
	Usefulness        Usefulness   `json:"usefulness_verdict"`
	Degraded          bool         `json:"degraded"`
	Err               ErrorCode    `json:"error,omitempty"`
}

// buildResult projects the terminal state into the caller-facing record.
func buildResult(s RunState) Result {
	return Result{
		Answer:            s.Answer,
		PassagesUsed:      s.PassagesUsed,
		RewriteCount:      s.RewriteCount,
		RegenerationCount: s.RegenerationCount,
		WebSearchUsed:     s.WebSearchUsed,
		Groundedness:      s.Groundedness,
		Usefulness:        s.Usefulness,
		Degraded:          s.degraded(),
		Err:               s.ErrorCode,
	}
}
