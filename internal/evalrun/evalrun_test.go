// internal/evalrun/evalrun_test.go
package evalrun

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mwiater/krino/internal/appconfig"
	"github.com/mwiater/krino/internal/ollama"
	"github.com/mwiater/krino/internal/store"
)

type scriptedGenerator struct {
	calls []generateCall
	fail  map[string]bool
}

type generateCall struct {
	model  string
	prompt string
	system string
}

func (s *scriptedGenerator) Generate(_ context.Context, model, prompt, system string, _ float64) (ollama.GenerateResult, error) {
	s.calls = append(s.calls, generateCall{model: model, prompt: prompt, system: system})
	if s.fail[prompt] {
		return ollama.GenerateResult{}, errors.New("boom")
	}
	return ollama.GenerateResult{OutputText: "response to " + prompt, LatencyMs: 5}, nil
}

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		Models:               []string{"llama3.2:latest", "qwen2.5:latest"},
		SystemPromptVersions: []string{"v1", "v2"},
	}
}

func testPrompts() []store.Prompt {
	return []store.Prompt{
		{PromptID: "p1", PromptText: "one"},
		{PromptID: "p2", PromptText: "two"},
		{PromptID: "p3", PromptText: "three"},
	}
}

func TestRunNestedOrderAndIDs(t *testing.T) {
	gen := &scriptedGenerator{}
	runner := &Runner{Client: gen, Pacing: -1, Now: func() time.Time { return time.Unix(0, 0).UTC() }}

	runs, err := runner.Run(context.Background(), testConfig(), testPrompts())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(runs) != 12 {
		t.Fatalf("expected 12 runs, got %d", len(runs))
	}
	if len(gen.calls) != 12 {
		t.Fatalf("expected 12 requests, got %d", len(gen.calls))
	}

	// Outer loop is models, middle is versions, inner is prompts.
	if gen.calls[0].model != "llama3.2:latest" || gen.calls[0].prompt != "one" {
		t.Fatalf("unexpected first call: %+v", gen.calls[0])
	}
	if gen.calls[3].model != "llama3.2:latest" {
		t.Fatalf("model switched too early: %+v", gen.calls[3])
	}
	if gen.calls[6].model != "qwen2.5:latest" {
		t.Fatalf("expected model switch at call 7: %+v", gen.calls[6])
	}
	if gen.calls[0].system == gen.calls[3].system {
		t.Fatal("expected different system prompts for v1 and v2")
	}

	for i, run := range runs {
		if run.RunID != i+1 {
			t.Fatalf("run IDs not sequential: %+v", run)
		}
	}
}

func TestRunSkipsFailuresLeavingIDGaps(t *testing.T) {
	gen := &scriptedGenerator{fail: map[string]bool{"two": true}}
	cfg := &appconfig.Config{
		Models:               []string{"llama3.2:latest"},
		SystemPromptVersions: []string{"v2"},
	}
	runner := &Runner{Client: gen, Pacing: -1}

	runs, err := runner.Run(context.Background(), cfg, testPrompts())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 surviving runs, got %d", len(runs))
	}
	if runs[0].RunID != 1 || runs[1].RunID != 3 {
		t.Fatalf("expected gap at run_id 2, got %d and %d", runs[0].RunID, runs[1].RunID)
	}
}

func TestRunPromptLimit(t *testing.T) {
	gen := &scriptedGenerator{}
	cfg := &appconfig.Config{
		Models:               []string{"llama3.2:latest"},
		SystemPromptVersions: []string{"v2"},
		PromptLimit:          2,
	}
	runner := &Runner{Client: gen, Pacing: -1}

	runs, err := runner.Run(context.Background(), cfg, testPrompts())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs with prompt limit, got %d", len(runs))
	}
}

func TestRunUnknownVersion(t *testing.T) {
	cfg := &appconfig.Config{
		Models:               []string{"llama3.2:latest"},
		SystemPromptVersions: []string{"v99"},
	}
	runner := &Runner{Client: &scriptedGenerator{}, Pacing: -1}

	if _, err := runner.Run(context.Background(), cfg, testPrompts()); err == nil {
		t.Fatal("expected error for unknown system prompt version")
	}
}

func TestRunEmptyPrompts(t *testing.T) {
	runner := &Runner{Client: &scriptedGenerator{}, Pacing: -1}
	runs, err := runner.Run(context.Background(), testConfig(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no runs, got %d", len(runs))
	}
}
