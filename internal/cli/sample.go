// internal/cli/sample.go
package krino

import (
	"fmt"
	"math/rand"

	"github.com/fatih/color"
	"github.com/mwiater/krino/internal/sample"
	"github.com/mwiater/krino/internal/store"
	"github.com/spf13/cobra"
)

// sampleCmd represents the 'sample' command, which draws the stratified
// human-rating sample and writes the blank rating template.
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Draw the stratified human-rating sample",
	Long: `The 'sample' command partitions runs into cohorts by model, system-prompt
version, and prompt category, draws a quota-capped sample from each cohort,
reconciles the total against the target size, and writes the human-ratings
template.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		prompts, err := store.LoadPrompts(cfg.PromptsPath())
		if err != nil {
			return err
		}
		runs, err := store.LoadRuns(cfg.RunsPath())
		if err != nil {
			return err
		}

		promptsByID := store.PromptsByID(prompts)
		rng := rand.New(rand.NewSource(cfg.SampleSeed()))
		opts := sample.Options{
			TargetSize:     cfg.SampleTarget(),
			PerCohortQuota: cfg.CohortQuota(),
		}
		sampled := sample.Stratified(runs, promptsByID, opts, rng)

		header := color.New(color.FgCyan, color.Bold)
		header.Println("\nSAMPLE BREAKDOWN")
		fmt.Printf("Seed: %d  Target: %d  Per-cohort quota: %d\n", cfg.SampleSeed(), opts.TargetSize, opts.PerCohortQuota)

		counts := sample.Breakdown(sampled, promptsByID)
		for _, key := range sample.SortedKeys(counts) {
			fmt.Printf("  %s / %s / %s: %d\n", key.Model, key.SystemPromptVersion, key.Category, counts[key])
		}
		fmt.Printf("Sampled %d of %d runs\n", len(sampled), len(runs))

		runIDs := make([]int, 0, len(sampled))
		for _, run := range sampled {
			runIDs = append(runIDs, run.RunID)
		}
		if err := store.WriteRatingTemplate(cfg.RatingsPath(), runIDs); err != nil {
			return err
		}

		fmt.Printf("\nWrote rating template to %s\n", cfg.RatingsPath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
}
