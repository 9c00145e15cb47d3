// internal/tui/tui.go
// Package tui provides the interactive run browser for reviewing model
// outputs and their score flags in the terminal.
package tui

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/krino/internal/store"
	"github.com/mwiater/krino/internal/util"
)

// viewState represents the current screen of the browser.
type viewState int

const (
	// viewRunList is the state where the user scrolls the run list.
	viewRunList viewState = iota
	// viewRunDetail is the state where a single run is shown in full.
	viewRunDetail
)

// record is one run joined with its prompt and score for display.
type record struct {
	run    store.Run
	prompt store.Prompt
	score  store.Score
	scored bool
}

// item adapts a record to the Bubble Tea list.
type item struct {
	record record
}

// Title returns the list line for the run.
func (i item) Title() string {
	return fmt.Sprintf("run %d  %s  %s", i.record.run.RunID, i.record.run.ModelName, i.record.run.SystemPromptVersion)
}

// Description returns the secondary list line for the run.
func (i item) Description() string {
	scored := "unscored"
	if i.record.scored {
		scored = "scored"
	}
	return fmt.Sprintf("%s | %dms | %s", i.record.prompt.Category, i.record.run.LatencyMs, scored)
}

// FilterValue returns the text used for list filtering.
func (i item) FilterValue() string {
	return fmt.Sprintf("%s %s %s", i.record.run.ModelName, i.record.prompt.Category, i.record.run.PromptID)
}

// model is the main application model for the run browser.
type model struct {
	state         viewState
	runList       list.Model
	viewport      viewport.Model
	selected      record
	width, height int
}

// initialModel joins the loaded tables and builds the browser model.
func initialModel(prompts []store.Prompt, runs []store.Run, scores []store.Score) *model {
	promptsByID := store.PromptsByID(prompts)
	scoresByRun := make(map[int]store.Score, len(scores))
	for _, s := range scores {
		scoresByRun[s.RunID] = s
	}

	sorted := make([]store.Run, len(runs))
	copy(sorted, runs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RunID < sorted[j].RunID })

	items := make([]list.Item, 0, len(sorted))
	for _, run := range sorted {
		score, scored := scoresByRun[run.RunID]
		items = append(items, item{record: record{
			run:    run,
			prompt: promptsByID[run.PromptID],
			score:  score,
			scored: scored,
		}})
	}

	runList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	runList.Title = fmt.Sprintf("Evaluation Runs (%d)", len(items))

	return &model{
		state:    viewRunList,
		runList:  runList,
		viewport: viewport.New(100, 5),
	}
}

// Init initializes the Bubble Tea model.
func (m *model) Init() tea.Cmd {
	return nil
}

// Update is the central update function for the browser.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			if m.state == viewRunDetail {
				m.state = viewRunList
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.runList.SetSize(msg.Width-2, msg.Height-4)
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = msg.Height - 6
	}

	switch m.state {
	case viewRunList:
		m.runList, cmd = m.runList.Update(msg)
		cmds = append(cmds, cmd)
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
			if selected, ok := m.runList.SelectedItem().(item); ok {
				m.selected = selected.record
				m.state = viewRunDetail
				m.viewport.SetContent(m.detailContent())
				m.viewport.GotoTop()
			}
		}

	case viewRunDetail:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the browser based on the current state.
func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.state {
	case viewRunList:
		help := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("  enter to inspect, q to quit")
		return lipgloss.NewStyle().Margin(1, 2).Render(m.runList.View()) + "\n" + help

	case viewRunDetail:
		headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
		header := headerStyle.Render(fmt.Sprintf("run %d | %s | %s", m.selected.run.RunID, m.selected.run.ModelName, m.selected.run.SystemPromptVersion))
		help := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(" (esc to go back, q to quit)")
		return header + help + "\n\n" + m.viewport.View()

	default:
		return "Unknown state"
	}
}

// detailContent renders the full run record for the detail viewport.
func (m *model) detailContent() string {
	labelStyle := lipgloss.NewStyle().Bold(true)
	promptStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))

	var builder strings.Builder
	builder.WriteString(labelStyle.Render("Prompt ID: ") + m.selected.run.PromptID + "\n")
	builder.WriteString(labelStyle.Render("Category: ") + m.selected.prompt.Category + "\n")
	builder.WriteString(labelStyle.Render("Difficulty: ") + fmt.Sprintf("%d", m.selected.prompt.Difficulty) + "\n")
	builder.WriteString(labelStyle.Render("Latency: ") + fmt.Sprintf("%dms", m.selected.run.LatencyMs) + "\n")
	builder.WriteString(labelStyle.Render("Output length: ") + fmt.Sprintf("%d chars", m.selected.run.OutputLenChars) + "\n\n")

	builder.WriteString(promptStyle.Render("Prompt:") + "\n")
	builder.WriteString(util.WrapToWidth(m.selected.prompt.PromptText, m.width-4) + "\n\n")

	builder.WriteString(promptStyle.Render("Output:") + "\n")
	builder.WriteString(util.WrapToWidth(m.selected.run.OutputText, m.width-4) + "\n\n")

	builder.WriteString(promptStyle.Render("Scores:") + "\n")
	if !m.selected.scored {
		builder.WriteString("not scored yet\n")
		return builder.String()
	}

	flag := func(name string, v int) {
		mark := "0"
		if v != 0 {
			mark = "1"
		}
		builder.WriteString(fmt.Sprintf("  %-26s %s\n", name, mark))
	}
	flag("format_followed", m.selected.score.FormatFollowed)
	flag("refusal_present", m.selected.score.RefusalPresent)
	flag("refusal_correct", m.selected.score.RefusalCorrect)
	flag("mentions_uncertainty", m.selected.score.MentionsUncertainty)
	flag("contains_policy_risk_flag", m.selected.score.ContainsPolicyRiskFlag)
	flag("citations_present", m.selected.score.CitationsPresent)
	return builder.String()
}

// Start runs the interactive run browser over the loaded tables.
func Start(prompts []store.Prompt, runs []store.Run, scores []store.Score) {
	m := initialModel(prompts, runs, scores)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
