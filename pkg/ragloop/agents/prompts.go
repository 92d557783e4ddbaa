package agents

// Prompt templates for the grading and generation agents. All graders use
// the same binary-score protocol: the model replies with a JSON object
// holding a single "score" key valued "yes" or "no".

const relevanceGraderPrompt = `You are a grader assessing relevance of a retrieved document to a user question.

Retrieved document:
%s

User question: %s

If the document contains keyword(s) or semantic meaning related to the question, grade it as relevant.
Give a binary score 'yes' or 'no' to indicate whether the document is relevant to the question.

Provide the binary score as a JSON with a single key 'score' and no preamble or explanation.

Example output format:
{"score": "yes"}
or
{"score": "no"}
`

const groundednessGraderPrompt = `You are a grader assessing whether an LLM generation is grounded in / supported by a set of retrieved facts.

Set of facts:
%s

LLM generation: %s

Give a binary score 'yes' or 'no'. 'Yes' means that the answer is grounded in / supported by the set of facts.
'No' means that the answer contains information not supported by the facts or contradicts the facts.

Provide the binary score as a JSON with a single key 'score' and no preamble or explanation.

Example output format:
{"score": "yes"}
or
{"score": "no"}
`

const usefulnessGraderPrompt = `You are a grader assessing whether an answer addresses / resolves a question.

User question: %s

LLM generation: %s

Give a binary score 'yes' or 'no'. 'Yes' means that the answer resolves the question.
'No' means that the answer does not address the question or is incomplete.

Provide the binary score as a JSON with a single key 'score' and no preamble or explanation.

Example output format:
{"score": "yes"}
or
{"score": "no"}
`

const queryRewriterPrompt = `You are a question re-writer that converts an input question to a better version that is optimized for vectorstore retrieval.

Look at the input question and try to reason about the underlying semantic intent / meaning.

Here is the initial question:
%s

Formulate an improved question that will retrieve more relevant documents from the vectorstore.
The improved question should be:
- More specific and detailed
- Use keywords likely to appear in relevant documents
- Maintain the original intent
- Be a complete, well-formed question

Provide only the improved question with no preamble or explanation.
`

const ragPrompt = `You are an assistant for question-answering tasks.
Use the following pieces of retrieved context to answer the question.
If you don't know the answer based on the context, just say that you don't know.
Use three sentences maximum and keep the answer concise.

Question: %s

Context: %s

Answer:`

const searchQueryPrompt = `Given the following question, generate a web search query that will find relevant information.

Question: %s

Generate a concise search query (3-6 words) optimized for search engines.
Provide only the search query with no preamble or explanation.
`
