package tui

import (
	"context"
	"fmt"
	"strings"

	"cycling-planner/internal/refine"
	"cycling-planner/internal/report"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// footerHeight is the number of lines reserved below the viewport
const footerHeight = 2

// RefineFunc performs a refinement and always returns a plan to show
type RefineFunc func(ctx context.Context) *refine.Result

// RenderFunc turns a refinement result into the text shown after it finishes
type RenderFunc func(res *refine.Result) string

// RefineDoneMsg is sent when the refinement finishes
type RefineDoneMsg struct {
	Result *refine.Result
}

// RefineModel shows a spinner while the advisor works and the refined plan after
type RefineModel struct {
	ctx    context.Context
	cancel context.CancelFunc
	run    RefineFunc
	render RenderFunc

	spinner  spinner.Model
	viewport viewport.Model
	running  bool
	result   *refine.Result
	width    int
	height   int
	ready    bool
}

// NewRefineModel creates a refine model; cancelling ctx or quitting aborts the run
func NewRefineModel(ctx context.Context, run RefineFunc, render RenderFunc) RefineModel {
	ctx, cancel := context.WithCancel(ctx)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = report.WarningStyle

	return RefineModel{
		ctx:     ctx,
		cancel:  cancel,
		run:     run,
		render:  render,
		spinner: s,
		running: true,
	}
}

// Init starts the spinner and the refinement
func (m RefineModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runRefine)
}

func (m RefineModel) runRefine() tea.Msg {
	return RefineDoneMsg{Result: m.run(m.ctx)}
}

// Result returns the finished refinement, nil while still running
func (m RefineModel) Result() *refine.Result {
	return m.result
}

// Update handles messages
func (m RefineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefineDoneMsg:
		m.running = false
		m.result = msg.Result
		if m.ready {
			m.viewport.SetContent(m.render(m.result))
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - footerHeight
		}
		if m.result != nil {
			m.viewport.SetContent(m.render(m.result))
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancel()
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.running || !m.ready {
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the refine screen
func (m RefineModel) View() string {
	if m.running {
		lines := []string{
			"",
			fmt.Sprintf("  %s Asking the advisor to refine your plan...", m.spinner.View()),
			"",
			report.StatusStyle.Render("  The template plan is kept if the advisor fails or times out."),
			"",
			"  " + report.RenderKeyHelp("q", "cancel"),
		}
		return strings.Join(lines, "\n")
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := "  " + strings.Join([]string{
		report.RenderKeyHelp("j/k", "scroll"),
		report.RenderKeyHelp("q", "quit"),
	}, "  ")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

// RunRefine runs the refinement behind a full screen spinner and returns its
// result. A nil result means the user quit before the advisor answered.
func RunRefine(ctx context.Context, run RefineFunc, render RenderFunc) (*refine.Result, error) {
	m := NewRefineModel(ctx, run, render)
	defer m.cancel()

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, fmt.Errorf("refine screen: %w", err)
	}
	return final.(RefineModel).Result(), nil
}
