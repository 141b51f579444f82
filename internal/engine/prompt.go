package engine

// LLM prompt templates: data only, no logic.

// SummaryPrompt is the stuff-strategy summarization template.
// Args: concatenated document text.
const SummaryPrompt = `Provide a summary of the following content in 300 words:
Content:%s`

// SummaryWordLimit is the target length named in SummaryPrompt.
const SummaryWordLimit = 300

// ReactPrompt drives the zero-shot ReAct research agent.
// Args: tool descriptions, comma-separated tool names, question, scratchpad.
const ReactPrompt = `Answer the following question as best you can. You have access to the following tools:

%s

Use the following format:

Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, should be one of [%s]
Action Input: the input to the action
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: I now know the final answer
Final Answer: the final answer to the original input question

Begin!

Question: %s
Thought:%s`

// ReactFormatHint is fed back as an observation when the model reply
// cannot be parsed into an action or a final answer.
const ReactFormatHint = `Invalid Format: reply with either "Action:" and "Action Input:" lines, or a "Final Answer:" line.`
