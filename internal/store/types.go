// internal/store/types.go
package store

// Prompt is one row of the prompts table. Prompts are immutable once loaded.
type Prompt struct {
	PromptID       string
	PromptText     string
	Category       string
	Difficulty     int
	ShouldRefuse   bool
	ExpectedFormat string
}

// Run is one generation record: a single model response to a single prompt
// under specific settings. Runs are never mutated after creation; scores live
// in a separate table keyed by RunID.
type Run struct {
	RunID               int
	PromptID            string
	ModelName           string
	SystemPromptVersion string
	Temperature         float64
	Timestamp           string
	LatencyMs           int
	OutputLenChars      int
	OutputText          string
}

// Score is one row of the auto-scores table: six binary quality flags for a
// single run.
type Score struct {
	RunID                  int
	FormatFollowed         int
	RefusalPresent         int
	RefusalCorrect         int
	MentionsUncertainty    int
	ContainsPolicyRiskFlag int
	CitationsPresent       int
}

// PromptsByID builds the prompt lookup used by scoring and sampling.
func PromptsByID(prompts []Prompt) map[string]Prompt {
	lookup := make(map[string]Prompt, len(prompts))
	for _, p := range prompts {
		lookup[p.PromptID] = p
	}
	return lookup
}
