// Package tui is the terminal client. The bubbletea loop is the single
// owner of all engagement state: remote calls run as commands and their
// completions are settled here, on the loop.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tripmate/internal/engagement"
	"tripmate/internal/tui/styles"
	"tripmate/internal/tui/views"
	"tripmate/pkg/logger"
)

// View represents different screens in the TUI
type View int

const (
	ViewFeed View = iota
	ViewDetail
)

// Model is the root Bubble Tea model
type Model struct {
	deps engagement.Deps
	keys KeyMap

	currentView View
	showHelp    bool

	width  int
	height int

	feedModel   views.FeedModel
	detailModel views.DetailModel
	hasDetail   bool
}

// New creates the application over deps. Cache and Allocator in deps are
// shared by every screen for the life of the program.
func New(deps engagement.Deps) *Model {
	return &Model{
		deps:        deps,
		keys:        DefaultKeyMap(),
		currentView: ViewFeed,
		feedModel:   views.NewFeedModel(engagement.NewFeed(deps)),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.feedModel.Init()
}

func (m Model) inputActive() bool {
	if m.currentView == ViewDetail && m.hasDetail {
		return m.detailModel.InputActive()
	}
	return m.feedModel.InputActive()
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.feedModel, _ = m.feedModel.Update(msg)
		if m.hasDetail {
			m.detailModel, _ = m.detailModel.Update(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if m.keys.ShouldHandleKey(m.inputActive(), msg) {
			switch {
			case key.Matches(msg, m.keys.ForceQuit), key.Matches(msg, m.keys.Quit):
				m.shutdown()
				return m, tea.Quit
			case key.Matches(msg, m.keys.Help):
				m.showHelp = !m.showHelp
				return m, nil
			}
		}

	case views.SettledMsg:
		return m.settle(msg)

	case views.OpenDetailMsg:
		if m.hasDetail {
			m.detailModel.Close()
		}
		detail := engagement.NewDetail(msg.Recommendation, m.deps)
		m.detailModel = views.NewDetailModel(detail, m.deps.User)
		m.detailModel, _ = m.detailModel.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		m.hasDetail = true
		m.currentView = ViewDetail
		return m, m.detailModel.Init()

	case views.BackMsg:
		if m.hasDetail {
			m.detailModel.Close()
			m.hasDetail = false
		}
		m.currentView = ViewFeed
		return m, m.feedModel.Resume()
	}

	return m.updateCurrentView(msg)
}

// settle applies a completion on the loop and hands the result to the
// screen that issued it. Results of a closed screen are stale and dropped.
func (m Model) settle(msg views.SettledMsg) (tea.Model, tea.Cmd) {
	res := msg.Completion.Settle()
	if res.Stale {
		return m, nil
	}
	if res.Err != nil {
		logger.WithFields(map[string]interface{}{
			"screen": msg.Owner.String(),
			"error":  res.Err.Error(),
		}).Warn(res.Message)
	}

	var cmd tea.Cmd
	switch msg.Owner {
	case views.OwnerFeed:
		m.feedModel, cmd = m.feedModel.Update(views.ResultMsg{Result: res})
	case views.OwnerDetail:
		if m.hasDetail {
			m.detailModel, cmd = m.detailModel.Update(views.ResultMsg{Result: res})
		}
	}
	return m, cmd
}

func (m *Model) shutdown() {
	if m.hasDetail {
		m.detailModel.Close()
	}
}

// updateCurrentView routes updates to the active view
func (m Model) updateCurrentView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewFeed:
		m.feedModel, cmd = m.feedModel.Update(msg)
	case ViewDetail:
		if m.hasDetail {
			m.detailModel, cmd = m.detailModel.Update(msg)
		}
	}

	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.currentView {
	case ViewFeed:
		content = m.feedModel.View()
	case ViewDetail:
		content = m.detailModel.View()
	}

	return styles.AppStyle.Render(content + "\n\n" + m.renderStatusBar())
}

// renderStatusBar renders the bottom status bar
func (m Model) renderStatusBar() string {
	viewName := "Recommendations"
	if m.currentView == ViewDetail {
		viewName = "Reviews"
	}

	left := styles.StatusBarActiveStyle.Render("● " + viewName)
	hint := "? help | q quit"
	if m.showHelp {
		hint = "enter open • esc back • l like • c review • r reply • e edit • x delete • ! report | q quit"
	}
	right := styles.StatusBarStyle.Render("User: " + m.deps.User.Name + " | " + hint)

	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if spacing < 0 {
		spacing = 0
	}
	return left + strings.Repeat(" ", spacing) + right
}
