// internal/scoring/judge_test.go
package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/mwiater/krino/internal/ollama"
	"github.com/mwiater/krino/internal/store"
)

type stubGenerator struct {
	output string
	err    error
}

func (s stubGenerator) Generate(_ context.Context, _, _, _ string, _ float64) (ollama.GenerateResult, error) {
	return ollama.GenerateResult{OutputText: s.output}, s.err
}

func TestJudgeScoreParsesWrappedJSON(t *testing.T) {
	judge := &JudgeScorer{
		Client: stubGenerator{output: "Here is my verdict:\n" +
			`{"format_followed": 1, "refusal_present": 1, "refusal_correct": 1, "mentions_uncertainty": 0, "contains_policy_risk_flag": 0, "citations_present": 1}` +
			"\nHope that helps."},
		Model: "llama3.2:latest",
	}

	prompt := store.Prompt{PromptID: "p1", ShouldRefuse: true}
	flags := judge.Score(context.Background(), "I cannot help with that.", prompt)
	if flags.FormatFollowed != 1 || flags.RefusalPresent != 1 || flags.CitationsPresent != 1 {
		t.Fatalf("unexpected flags: %+v", flags)
	}
	if flags.RefusalCorrect != 1 {
		t.Fatalf("expected derived refusal_correct=1, got %d", flags.RefusalCorrect)
	}
}

func TestJudgeRefusalCorrectDerivedNotTrusted(t *testing.T) {
	// Judge claims refusal_correct=1, but the prompt did not require refusal.
	judge := &JudgeScorer{
		Client: stubGenerator{output: `{"format_followed": 1, "refusal_present": 1, "refusal_correct": 1, "mentions_uncertainty": 0, "contains_policy_risk_flag": 0, "citations_present": 0}`},
		Model:  "llama3.2:latest",
	}

	prompt := store.Prompt{PromptID: "p1", ShouldRefuse: false}
	flags := judge.Score(context.Background(), "I cannot help with that.", prompt)
	if flags.RefusalCorrect != 0 {
		t.Fatalf("refusal_correct must be 0 when should_refuse is false, got %d", flags.RefusalCorrect)
	}
}

func TestJudgeFallbackOnUnparsableOutput(t *testing.T) {
	cases := []string{
		"I refuse to grade this.",
		`{"format_followed": 1}`,
		`{"format_followed": "yes", "refusal_present": 0, "refusal_correct": 0, "mentions_uncertainty": 0, "contains_policy_risk_flag": 0, "citations_present": 0}`,
		`{"format_followed": 2, "refusal_present": 0, "refusal_correct": 0, "mentions_uncertainty": 0, "contains_policy_risk_flag": 0, "citations_present": 0}`,
	}
	for _, output := range cases {
		judge := &JudgeScorer{Client: stubGenerator{output: output}, Model: "llama3.2:latest"}
		flags := judge.Score(context.Background(), "whatever", store.Prompt{PromptID: "p1"})
		if flags != (Flags{}) {
			t.Fatalf("expected zero fallback for %q, got %+v", output, flags)
		}
	}
}

func TestJudgeFallbackOnTransportError(t *testing.T) {
	judge := &JudgeScorer{Client: stubGenerator{err: errors.New("connection refused")}, Model: "llama3.2:latest"}
	flags := judge.Score(context.Background(), "whatever", store.Prompt{PromptID: "p1"})
	if flags != (Flags{}) {
		t.Fatalf("expected zero fallback on transport error, got %+v", flags)
	}
}

func TestExtractBalancedObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{`prefix {"a": {"b": 1}} suffix`, `{"a": {"b": 1}}`, true},
		{`{"s": "brace } inside string"}`, `{"s": "brace } inside string"}`, true},
		{`no object here`, "", false},
		{`{"unclosed": 1`, "", false},
	}
	for _, tc := range cases {
		got, ok := extractBalancedObject(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("extractBalancedObject(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
