// internal/report/report.go
// Package report joins the harness tables and renders a standalone HTML
// dashboard with aggregate charts and filters.
package report

import (
	"bytes"
	"encoding/json"
	"html/template"
	"time"

	"github.com/mwiater/krino/internal/logging"
	"github.com/mwiater/krino/internal/store"
	"github.com/mwiater/krino/internal/util"
)

// DashboardData is the template view model.
type DashboardData struct {
	Title       string
	MetricsJSON template.JS
}

// Metrics is the JSON payload embedded into the dashboard.
type Metrics struct {
	GeneratedAt  string         `json:"generated_at"`
	TotalRuns    int            `json:"total_runs"`
	TotalPrompts int            `json:"total_prompts"`
	Models       []ModelMetrics `json:"models"`
	Rows         []Row          `json:"rows"`
}

// ModelMetrics aggregates one model's runs and score flags.
type ModelMetrics struct {
	Model             string         `json:"model"`
	Runs              int            `json:"runs"`
	AvgLatencyMs      float64        `json:"avg_latency_ms"`
	AvgOutputChars    float64        `json:"avg_output_chars"`
	FormatFollowedPct float64        `json:"format_followed_pct"`
	RefusalCorrectPct float64        `json:"refusal_correct_pct"`
	UncertaintyPct    float64        `json:"uncertainty_pct"`
	CitationsPct      float64        `json:"citations_pct"`
	PolicyRiskPct     float64        `json:"policy_risk_pct"`
	Categories        map[string]int `json:"categories"`
}

// Row is one joined record for the filterable table.
type Row struct {
	RunID         int    `json:"run_id"`
	Model         string `json:"model"`
	Version       string `json:"version"`
	Category      string `json:"category"`
	Difficulty    int    `json:"difficulty"`
	LatencyMs     int    `json:"latency_ms"`
	OutputChars   int    `json:"output_chars"`
	Scored        bool   `json:"scored"`
	FormatOK      int    `json:"format_ok"`
	Refusal       int    `json:"refusal"`
	Uncertainty   int    `json:"uncertainty"`
	Citations     int    `json:"citations"`
	OutputPreview string `json:"output_preview"`
}

// BuildMetrics joins runs with their prompts and scores. Runs referencing a
// missing prompt are logged and skipped; runs without a score row keep zero
// flags and are marked unscored.
func BuildMetrics(prompts []store.Prompt, runs []store.Run, scores []store.Score) Metrics {
	promptsByID := store.PromptsByID(prompts)
	scoresByRun := make(map[int]store.Score, len(scores))
	for _, s := range scores {
		scoresByRun[s.RunID] = s
	}

	type modelAccum struct {
		runs        int
		latency     int
		outputChars int
		scored      int
		formatOK    int
		refusalOK   int
		uncertainty int
		citations   int
		policyRisk  int
		categories  map[string]int
	}
	accum := make(map[string]*modelAccum)
	order := []string{}

	metrics := Metrics{
		GeneratedAt:  time.Now().Format(time.RFC3339),
		TotalPrompts: len(prompts),
	}

	for _, run := range runs {
		prompt, ok := promptsByID[run.PromptID]
		if !ok {
			logging.LogEvent("warning: run_id %d references missing prompt_id %q, excluded from report", run.RunID, run.PromptID)
			continue
		}

		a := accum[run.ModelName]
		if a == nil {
			a = &modelAccum{categories: make(map[string]int)}
			accum[run.ModelName] = a
			order = append(order, run.ModelName)
		}
		a.runs++
		a.latency += run.LatencyMs
		a.outputChars += run.OutputLenChars
		a.categories[prompt.Category]++

		score, scored := scoresByRun[run.RunID]
		if scored {
			a.scored++
			a.formatOK += score.FormatFollowed
			a.refusalOK += score.RefusalCorrect
			a.uncertainty += score.MentionsUncertainty
			a.citations += score.CitationsPresent
			a.policyRisk += score.ContainsPolicyRiskFlag
		}

		metrics.Rows = append(metrics.Rows, Row{
			RunID:         run.RunID,
			Model:         run.ModelName,
			Version:       run.SystemPromptVersion,
			Category:      prompt.Category,
			Difficulty:    prompt.Difficulty,
			LatencyMs:     run.LatencyMs,
			OutputChars:   run.OutputLenChars,
			Scored:        scored,
			FormatOK:      score.FormatFollowed,
			Refusal:       score.RefusalPresent,
			Uncertainty:   score.MentionsUncertainty,
			Citations:     score.CitationsPresent,
			OutputPreview: util.TruncateRunes(run.OutputText, 160),
		})
		metrics.TotalRuns++
	}

	for _, model := range order {
		a := accum[model]
		m := ModelMetrics{
			Model:      model,
			Runs:       a.runs,
			Categories: a.categories,
		}
		if a.runs > 0 {
			m.AvgLatencyMs = float64(a.latency) / float64(a.runs)
			m.AvgOutputChars = float64(a.outputChars) / float64(a.runs)
		}
		if a.scored > 0 {
			pct := func(n int) float64 { return float64(n) / float64(a.scored) * 100 }
			m.FormatFollowedPct = pct(a.formatOK)
			m.RefusalCorrectPct = pct(a.refusalOK)
			m.UncertaintyPct = pct(a.uncertainty)
			m.CitationsPct = pct(a.citations)
			m.PolicyRiskPct = pct(a.policyRisk)
		}
		metrics.Models = append(metrics.Models, m)
	}

	return metrics
}

// Generate renders the standalone HTML dashboard.
func Generate(metrics Metrics) (string, error) {
	payload, err := json.Marshal(metrics)
	if err != nil {
		return "", err
	}

	viewModel := DashboardData{
		Title:       "krino: LLM Evaluation Dashboard",
		MetricsJSON: template.JS(payload),
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, viewModel); err != nil {
		return "", err
	}
	return buf.String(), nil
}
