// internal/cli/run.go
package krino

import (
	"fmt"

	"github.com/mwiater/krino/internal/evalrun"
	"github.com/mwiater/krino/internal/ollama"
	"github.com/mwiater/krino/internal/store"
	"github.com/spf13/cobra"
)

// runCmd represents the 'run' command, which drives the prompt battery
// through each configured model and records the responses.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the prompt battery against the configured models",
	Long: `The 'run' command sends every prompt to each configured model under each
system-prompt version, records response text and latency, and writes the
runs table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		prompts, err := store.LoadPrompts(cfg.PromptsPath())
		if err != nil {
			return err
		}

		runner := &evalrun.Runner{Client: ollama.New(cfg)}
		runs, err := runner.Run(cmd.Context(), cfg, prompts)
		if err != nil {
			return err
		}

		if err := store.WriteRuns(cfg.RunsPath(), runs); err != nil {
			return err
		}

		evalrun.PrintSummary(runs)
		fmt.Printf("\nWrote %d runs to %s\n", len(runs), cfg.RunsPath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
