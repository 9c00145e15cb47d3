// internal/cli/browse.go
package krino

import (
	"github.com/mwiater/krino/internal/tui"
	"github.com/spf13/cobra"
)

var (
	// startBrowser is a function alias to tui.Start for launching the run browser.
	startBrowser = tui.Start
)

// browseCmd represents the 'browse' command, which opens the interactive
// run browser in the terminal.
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse recorded runs and scores interactively",
	Long:  `The 'browse' command opens a terminal UI for scrolling recorded runs and inspecting each response and its score flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		prompts, runs, scores, err := loadTables(cfg.PromptsPath(), cfg.RunsPath(), cfg.ScoresPath())
		if err != nil {
			return err
		}

		startBrowser(prompts, runs, scores)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
