// internal/cli/report.go
package krino

import (
	"errors"
	"fmt"
	"os"

	"github.com/mwiater/krino/internal/logging"
	"github.com/mwiater/krino/internal/report"
	"github.com/mwiater/krino/internal/store"
	"github.com/spf13/cobra"
)

var reportOut string

// reportCmd represents the 'report' command, which renders the standalone
// HTML dashboard from the recorded tables.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the HTML evaluation dashboard",
	Long: `The 'report' command joins the prompts, runs, and auto-scores tables and
writes a standalone HTML dashboard with aggregate charts and a filterable
run table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		prompts, runs, scores, err := loadTables(cfg.PromptsPath(), cfg.RunsPath(), cfg.ScoresPath())
		if err != nil {
			return err
		}

		html, err := report.Generate(report.BuildMetrics(prompts, runs, scores))
		if err != nil {
			return err
		}
		if err := os.WriteFile(reportOut, []byte(html), 0o644); err != nil {
			return fmt.Errorf("could not write %s: %w", reportOut, err)
		}

		fmt.Printf("Wrote dashboard to %s\n", reportOut)
		return nil
	},
}

// loadTables loads the three harness tables. A missing scores table is not an
// error; runs render as unscored until 'score' has been executed.
func loadTables(promptsPath, runsPath, scoresPath string) ([]store.Prompt, []store.Run, []store.Score, error) {
	prompts, err := store.LoadPrompts(promptsPath)
	if err != nil {
		return nil, nil, nil, err
	}
	runs, err := store.LoadRuns(runsPath)
	if err != nil {
		return nil, nil, nil, err
	}
	scores, err := store.LoadScores(scoresPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil, err
		}
		logging.LogEvent("no scores table at %s, runs render as unscored", scoresPath)
		scores = nil
	}
	return prompts, runs, scores, nil
}

func init() {
	reportCmd.Flags().StringVar(&reportOut, "out", "dashboard.html", "output path for the HTML dashboard")
	rootCmd.AddCommand(reportCmd)
}
