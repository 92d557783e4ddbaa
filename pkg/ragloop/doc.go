// Package ragloop implements a self-correcting retrieval-augmented
// question-answering control loop.
//
// A Pipeline drives one question through a closed set of steps: retrieve
// passages, grade each for relevance, optionally rewrite the query or fall
// back to web search, generate an answer, then verify the answer for
// groundedness and usefulness. Verification failures trigger bounded
// self-correction: ungrounded answers are regenerated, unuseful answers
// restart the loop through a query rewrite. All loops are budgeted and a
// global step ceiling guarantees termination regardless of collaborator
// behavior.
//
// Basic usage:
//
//	pipe, err := ragloop.New(ragloop.Collaborators{
//		Retriever:    myRetriever,
//		Relevance:    graders.NewRelevanceGrader(client, model),
//		Groundedness: graders.NewGroundednessGrader(client, model),
//		Usefulness:   graders.NewUsefulnessGrader(client, model),
//		Rewriter:     myRewriter,
//		Generator:    myGenerator,
//		Search:       mySearch, // optional
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := pipe.Run(ctx, "what are the types of agent memory?")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Answer, result.Degraded)
//
// Collaborator failures never abort a run. Retrieval and search failures
// degrade to empty context, relevance grading fails open, verification
// fails closed, and the run always ends with a structured Result. Only
// cancellation and step panics surface as errors from Run.
//
// Use Stream instead of Run to observe each step as it completes.
package ragloop
