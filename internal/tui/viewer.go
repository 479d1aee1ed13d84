package tui

import (
	"fmt"

	"cycling-planner/internal/report"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ViewerModel is a scrollable screen for pre-rendered content
type ViewerModel struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
}

// NewViewerModel creates a viewer for content
func NewViewerModel(title, content string) ViewerModel {
	return ViewerModel{title: title, content: content}
}

// Init initializes the viewer
func (m ViewerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - footerHeight
		}
		m.viewport.SetContent(m.content)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}

	if !m.ready {
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the viewer
func (m ViewerModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	footer := fmt.Sprintf("  %s  %3.0f%%  %s  %s",
		report.StatusStyle.Render(m.title),
		m.viewport.ScrollPercent()*100,
		report.RenderKeyHelp("j/k", "scroll"),
		report.RenderKeyHelp("q", "quit"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

// RunViewer shows content full screen until the user quits
func RunViewer(title, content string) error {
	if _, err := tea.NewProgram(NewViewerModel(title, content), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}
