package engine

// --- Summarizer types ---

// Document is text extracted from one URL. Produced once per summarization
// request and consumed by the summarization step.
type Document struct {
	Text      string `json:"text"`
	SourceURL string `json:"source_url"`
	Title     string `json:"title,omitempty"`
	Stage     string `json:"stage"` // cascade stage that produced Text
}

// Summary is the result of one summarization request.
type Summary struct {
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
	Kind   string `json:"kind"`  // video or generic
	Stage  string `json:"stage"` // cascade stage that produced the source text
	Text   string `json:"summary"`
	Words  int    `json:"words"`
	Cached bool   `json:"cached,omitempty"`
}

// --- Tool inputs/outputs (MCP) ---

type SummarizeInput struct {
	URL    string `json:"url" jsonschema:"YouTube video or web page URL to summarize"`
	APIKey string `json:"api_key,omitempty" jsonschema:"LLM provider API key (default: server key)"`
}

type ResearchAskInput struct {
	Query     string `json:"query" jsonschema:"Research question answered with ArXiv and Wikipedia lookups"`
	SessionID string `json:"session_id,omitempty" jsonschema:"Continue an earlier conversation (returned by a previous call)"`
	APIKey    string `json:"api_key,omitempty" jsonschema:"LLM provider API key (default: server key)"`
}

// StepItem is one rendered reasoning step of the research agent.
type StepItem struct {
	Step  int    `json:"step"`
	Type  string `json:"type"`
	Tool  string `json:"tool,omitempty"`
	Input string `json:"input,omitempty"`
	Text  string `json:"text,omitempty"`
}

type ResearchAskOutput struct {
	SessionID string     `json:"session_id"`
	Query     string     `json:"query"`
	Answer    string     `json:"answer"`
	Steps     []StepItem `json:"steps,omitempty"`
	Error     string     `json:"error,omitempty"`
	Turns     int        `json:"turns"` // transcript length after this call
}
