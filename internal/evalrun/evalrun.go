// internal/evalrun/evalrun.go
// Package evalrun drives the full prompt battery through each configured
// model and system-prompt version, one request at a time.
package evalrun

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/mwiater/krino/internal/appconfig"
	"github.com/mwiater/krino/internal/logging"
	"github.com/mwiater/krino/internal/ollama"
	"github.com/mwiater/krino/internal/store"
)

// defaultPacing is the voluntary delay between requests so the local
// endpoint is never hammered. It is pacing, not a concurrency primitive.
const defaultPacing = 200 * time.Millisecond

// Generator is the slice of the inference client the runner needs.
type Generator interface {
	Generate(ctx context.Context, model, prompt, system string, temperature float64) (ollama.GenerateResult, error)
}

// Runner executes the evaluation battery sequentially.
type Runner struct {
	Client Generator
	// Pacing overrides the inter-request delay; zero means defaultPacing,
	// negative disables the delay.
	Pacing time.Duration
	// Now stamps each run; nil means time.Now.
	Now func() time.Time
}

func (r *Runner) pacing() time.Duration {
	if r.Pacing == 0 {
		return defaultPacing
	}
	if r.Pacing < 0 {
		return 0
	}
	return r.Pacing
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run walks models (outer), system-prompt versions (middle), and prompts
// (inner). Run IDs are assigned before dispatch, so a failed request leaves a
// gap in the sequence instead of renumbering later runs. Failed requests are
// logged and skipped; they produce no row.
func (r *Runner) Run(ctx context.Context, cfg *appconfig.Config, prompts []store.Prompt) ([]store.Run, error) {
	if len(prompts) == 0 {
		logging.LogEvent("warning: no prompts loaded, nothing to run")
		return nil, nil
	}

	battery := prompts
	if cfg.PromptLimit > 0 && cfg.PromptLimit < len(battery) {
		logging.LogEvent("prompt limit active: first %d of %d prompts", cfg.PromptLimit, len(battery))
		battery = battery[:cfg.PromptLimit]
	}

	versions := cfg.PromptVersions()
	total := len(cfg.Models) * len(versions) * len(battery)
	temperature := cfg.SamplingTemperature()

	var runs []store.Run
	runID := 0
	current := 0
	for _, model := range cfg.Models {
		for _, version := range versions {
			systemPrompt, err := cfg.SystemPromptText(version)
			if err != nil {
				return nil, err
			}
			logging.LogEvent("running %s with system prompt %s", model, version)

			for _, prompt := range battery {
				runID++
				current++
				fmt.Printf("[%d/%d] %s / %s - Prompt %s... ", current, total, model, version, prompt.PromptID)

				result, err := r.Client.Generate(ctx, model, prompt.PromptText, systemPrompt, temperature)
				if err != nil {
					fmt.Println("FAILED")
					logging.LogEvent("warning: run_id %d (prompt %s, model %s) failed, skipping: %v", runID, prompt.PromptID, model, err)
				} else {
					fmt.Printf("ok (%dms, %d chars)\n", result.LatencyMs, len(result.OutputText))
					runs = append(runs, store.Run{
						RunID:               runID,
						PromptID:            prompt.PromptID,
						ModelName:           model,
						SystemPromptVersion: version,
						Temperature:         temperature,
						Timestamp:           r.now().Format(time.RFC3339),
						LatencyMs:           result.LatencyMs,
						OutputLenChars:      len(result.OutputText),
						OutputText:          result.OutputText,
					})
				}

				if delay := r.pacing(); delay > 0 && current < total {
					select {
					case <-time.After(delay):
					case <-ctx.Done():
						return runs, ctx.Err()
					}
				}
			}
		}
	}
	return runs, nil
}

// PrintSummary writes the post-run statistics block to the console.
func PrintSummary(runs []store.Run) {
	header := color.New(color.FgCyan, color.Bold)
	header.Println("\nEVALUATION SUMMARY")

	if len(runs) == 0 {
		color.Yellow("No runs completed")
		return
	}

	var totalLatency, totalLength int
	perModel := make(map[string]int)
	for _, run := range runs {
		totalLatency += run.LatencyMs
		totalLength += run.OutputLenChars
		perModel[run.ModelName]++
	}

	fmt.Printf("Total runs completed: %d\n", len(runs))
	fmt.Printf("Average latency: %dms\n", totalLatency/len(runs))
	fmt.Printf("Average output length: %d chars\n", totalLength/len(runs))
	fmt.Println("Runs by model:")
	for model, count := range perModel {
		fmt.Printf("  %s: %d\n", model, count)
	}
}
