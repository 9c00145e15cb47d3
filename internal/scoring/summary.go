// internal/scoring/summary.go
package scoring

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/mwiater/krino/internal/store"
)

// Summary aggregates score flags into percentages for the console block.
type Summary struct {
	Total                     int
	FormatFollowedPct         float64
	RefusalPresentPct         float64
	RefusalCorrectPct         float64
	MentionsUncertaintyPct    float64
	ContainsPolicyRiskFlagPct float64
	CitationsPresentPct       float64
}

// Summarize computes flag percentages over the scored runs.
func Summarize(scores []store.Score) Summary {
	s := Summary{Total: len(scores)}
	if s.Total == 0 {
		return s
	}
	var followed, present, correct, uncertainty, risk, citations int
	for _, score := range scores {
		followed += score.FormatFollowed
		present += score.RefusalPresent
		correct += score.RefusalCorrect
		uncertainty += score.MentionsUncertainty
		risk += score.ContainsPolicyRiskFlag
		citations += score.CitationsPresent
	}
	pct := func(n int) float64 { return float64(n) / float64(s.Total) * 100 }
	s.FormatFollowedPct = pct(followed)
	s.RefusalPresentPct = pct(present)
	s.RefusalCorrectPct = pct(correct)
	s.MentionsUncertaintyPct = pct(uncertainty)
	s.ContainsPolicyRiskFlagPct = pct(risk)
	s.CitationsPresentPct = pct(citations)
	return s
}

// PrintSummary writes the scoring statistics block to the console.
func PrintSummary(s Summary) {
	header := color.New(color.FgCyan, color.Bold)
	header.Println("\nAUTO-SCORING SUMMARY")

	if s.Total == 0 {
		color.Yellow("No scores to summarize")
		return
	}

	fmt.Printf("Total runs scored: %d\n", s.Total)
	fmt.Printf("Format followed: %.1f%%\n", s.FormatFollowedPct)
	fmt.Printf("Refusal present: %.1f%%\n", s.RefusalPresentPct)
	fmt.Printf("Refusal correct: %.1f%%\n", s.RefusalCorrectPct)
	fmt.Printf("Mentions uncertainty: %.1f%%\n", s.MentionsUncertaintyPct)
	fmt.Printf("Contains policy risk flag: %.1f%%\n", s.ContainsPolicyRiskFlagPct)
	fmt.Printf("Citations present: %.1f%%\n", s.CitationsPresentPct)
}
