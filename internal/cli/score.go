// internal/cli/score.go
package krino

import (
	"errors"
	"fmt"

	"github.com/mwiater/krino/internal/logging"
	"github.com/mwiater/krino/internal/ollama"
	"github.com/mwiater/krino/internal/scoring"
	"github.com/mwiater/krino/internal/store"
	"github.com/spf13/cobra"
)

var useJudge bool

// scoreCmd represents the 'score' command, which scores every recorded run
// with either the rule-based heuristics or the LLM judge.
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score recorded runs with heuristics or an LLM judge",
	Long: `The 'score' command reads the runs table, evaluates each response with the
rule-based heuristics (or a secondary judge model with --judge), and writes
the auto-scores table.`,
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

		var scorer scoring.Scorer = scoring.RuleScorer{}
		if useJudge {
			if cfg.JudgeModel == "" {
				return errors.New("--judge requires judgeModel in the config")
			}
			scorer = &scoring.JudgeScorer{Client: ollama.New(cfg), Model: cfg.JudgeModel}
			fmt.Printf("Scoring %d runs with judge model %s\n", len(runs), cfg.JudgeModel)
		} else {
			fmt.Printf("Scoring %d runs with rule-based heuristics\n", len(runs))
		}

		promptsByID := store.PromptsByID(prompts)
		scores := make([]store.Score, 0, len(runs))
		for _, run := range runs {
			prompt, ok := promptsByID[run.PromptID]
			if !ok {
				logging.LogEvent("warning: run_id %d references missing prompt_id %q, not scored", run.RunID, run.PromptID)
				continue
			}
			flags := scorer.Score(cmd.Context(), run.OutputText, prompt)
			scores = append(scores, scoring.ToScore(run.RunID, flags))
		}

		if err := store.WriteScores(cfg.ScoresPath(), scores); err != nil {
			return err
		}

		scoring.PrintSummary(scoring.Summarize(scores))
		fmt.Printf("\nWrote %d scores to %s\n", len(scores), cfg.ScoresPath())
		return nil
	},
}

func init() {
	scoreCmd.Flags().BoolVar(&useJudge, "judge", false, "score with the configured judge model instead of heuristics")
	rootCmd.AddCommand(scoreCmd)
}
