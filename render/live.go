package render

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type tickMsg time.Time

// liveModel polls the daemon state and re-renders the context view.
type liveModel struct {
	root string
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m liveModel) Init() tea.Cmd {
	return tick()
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		return m, tick()
	}
	return m, nil
}

func (m liveModel) View() string {
	var sb strings.Builder
	Context(&sb, m.root, true)
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("  q to quit"))
	sb.WriteString("\n")
	return sb.String()
}

// Live runs the full-screen live context view until the user quits.
func Live(root string) error {
	p := tea.NewProgram(liveModel{root: root}, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
