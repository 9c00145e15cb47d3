// internal/report/report_test.go
package report

import (
	"strings"
	"testing"

	"github.com/mwiater/krino/internal/store"
)

func fixturePrompts() []store.Prompt {
	return []store.Prompt{
		{PromptID: "p1", PromptText: "one", Category: "coding", Difficulty: 2},
		{PromptID: "p2", PromptText: "two", Category: "safety", Difficulty: 4, ShouldRefuse: true},
	}
}

func fixtureRuns() []store.Run {
	return []store.Run{
		{RunID: 1, PromptID: "p1", ModelName: "llama3.2:latest", SystemPromptVersion: "v2", LatencyMs: 100, OutputLenChars: 40, OutputText: "alpha"},
		{RunID: 2, PromptID: "p2", ModelName: "llama3.2:latest", SystemPromptVersion: "v2", LatencyMs: 300, OutputLenChars: 60, OutputText: "beta"},
		{RunID: 3, PromptID: "p1", ModelName: "qwen2.5:latest", SystemPromptVersion: "v1", LatencyMs: 200, OutputLenChars: 80, OutputText: "gamma"},
	}
}

func TestBuildMetricsAggregates(t *testing.T) {
	scores := []store.Score{
		{RunID: 1, FormatFollowed: 1, CitationsPresent: 1},
		{RunID: 2, FormatFollowed: 0, RefusalPresent: 1, RefusalCorrect: 1},
	}

	m := BuildMetrics(fixturePrompts(), fixtureRuns(), scores)

	if m.TotalRuns != 3 || m.TotalPrompts != 2 {
		t.Fatalf("totals: %d runs, %d prompts", m.TotalRuns, m.TotalPrompts)
	}
	if len(m.Models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(m.Models))
	}

	llama := m.Models[0]
	if llama.Model != "llama3.2:latest" {
		t.Fatalf("model order should follow first appearance: %q", llama.Model)
	}
	if llama.Runs != 2 || llama.AvgLatencyMs != 200 || llama.AvgOutputChars != 50 {
		t.Fatalf("llama aggregates: %+v", llama)
	}
	if llama.FormatFollowedPct != 50 || llama.RefusalCorrectPct != 50 {
		t.Fatalf("llama flag pcts: %+v", llama)
	}
	if llama.Categories["coding"] != 1 || llama.Categories["safety"] != 1 {
		t.Fatalf("llama categories: %+v", llama.Categories)
	}

	qwen := m.Models[1]
	if qwen.Runs != 1 || qwen.FormatFollowedPct != 0 {
		t.Fatalf("qwen aggregates: %+v", qwen)
	}
}

func TestBuildMetricsUnscoredRuns(t *testing.T) {
	m := BuildMetrics(fixturePrompts(), fixtureRuns(), nil)

	if len(m.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(m.Rows))
	}
	for _, row := range m.Rows {
		if row.Scored {
			t.Fatalf("row %d should be unscored", row.RunID)
		}
		if row.FormatOK != 0 || row.Citations != 0 {
			t.Fatalf("unscored row should keep zero flags: %+v", row)
		}
	}
}

func TestBuildMetricsMissingPromptSkipped(t *testing.T) {
	runs := append(fixtureRuns(), store.Run{RunID: 99, PromptID: "ghost", ModelName: "llama3.2:latest"})
	m := BuildMetrics(fixturePrompts(), runs, nil)

	if m.TotalRuns != 3 {
		t.Fatalf("orphan run should be excluded, got %d runs", m.TotalRuns)
	}
	for _, row := range m.Rows {
		if row.RunID == 99 {
			t.Fatal("orphan run leaked into rows")
		}
	}
}

func TestGenerateEmbedsMetrics(t *testing.T) {
	scores := []store.Score{{RunID: 1, FormatFollowed: 1}}
	html, err := Generate(BuildMetrics(fixturePrompts(), fixtureRuns(), scores))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		"krino: LLM Evaluation Dashboard",
		"chart.js",
		`"total_runs":3`,
		`"model":"llama3.2:latest"`,
		`"model":"qwen2.5:latest"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("dashboard missing %q", want)
		}
	}
}

func TestGenerateEmptyTables(t *testing.T) {
	html, err := Generate(BuildMetrics(nil, nil, nil))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(html, `"total_runs":0`) {
		t.Fatal("empty dashboard should still embed zero totals")
	}
}
