package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jamesainslie/nospace/pkg/nospace/analyze"
	"github.com/jamesainslie/nospace/pkg/nospace/logging"
)

var logger = logging.Get("tui")

// ErrNoTree is reported when the loaded result carries no tree to browse.
var ErrNoTree = errors.New("result has no tree")

// AppState represents the current state of the application.
type AppState int

const (
	StateLoading AppState = iota
	StateBrowse
	StateError
)

// LoadFunc produces a fresh analysis, including its tree.
type LoadFunc func(ctx context.Context) (*analyze.Result, error)

// Options configures the TUI application.
type Options struct {
	// Source names the transcript in the header.
	Source string

	// Load runs the analysis. It is called on start, on reload, and on
	// every change notification.
	Load LoadFunc

	// Changes delivers change notifications for the transcript. Nil
	// disables live reloading.
	Changes <-chan string
}

// Model is the Bubble Tea model for the tree browser.
type Model struct {
	state   AppState
	options Options

	ctx    context.Context
	cancel context.CancelFunc

	spinner spinner.Model
	keys    KeyMap
	help    help.Model

	view      *TreeView
	result    *analyze.Result
	err       error
	reloading bool

	width  int
	height int
}

// resultMsg carries a finished analysis.
type resultMsg struct {
	result *analyze.Result
	err    error
}

// changeMsg reports that the watched transcript changed.
type changeMsg struct {
	path string
}

// changesClosedMsg reports that no more change notifications will arrive.
type changesClosedMsg struct{}

// NewModel creates a new TUI model with the given options.
func NewModel(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return Model{
		state:   StateLoading,
		options: opts,
		ctx:     ctx,
		cancel:  cancel,
		spinner: s,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		view:    NewTreeView(nil),
		width:   80,
		height:  24,
	}
}

// Init starts the first analysis.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.load(),
		m.listenForChanges(),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state != StateLoading && !m.reloading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case resultMsg:
		m.reloading = false
		if msg.err == nil && msg.result.Tree == nil {
			msg.err = ErrNoTree
		}
		if msg.err != nil {
			logger.Warn("analysis failed", "source", m.options.Source, "error", msg.err)
			m.err = msg.err
			if m.result == nil {
				m.state = StateError
			}
			return m, nil
		}
		m.err = nil
		m.result = msg.result
		m.view.SetResult(msg.result)
		m.state = StateBrowse
		return m, nil

	case changeMsg:
		logger.Info("transcript changed, reloading", "path", msg.path)
		m.reloading = true
		return m, tea.Batch(m.load(), m.listenForChanges(), m.spinner.Tick)

	case changesClosedMsg:
		m.options.Changes = nil
		return m, nil
	}

	return m, nil
}

// handleKey handles keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.cancel()
		return m, tea.Quit
	}
	if m.state != StateBrowse {
		return m, nil
	}

	page := max(m.treeHeight(), 1)
	switch {
	case key.Matches(msg, m.keys.Up):
		m.view.MoveUp(1)
	case key.Matches(msg, m.keys.Down):
		m.view.MoveDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.view.MoveUp(page)
	case key.Matches(msg, m.keys.PageDown):
		m.view.MoveDown(page)
	case key.Matches(msg, m.keys.Top):
		m.view.Top()
	case key.Matches(msg, m.keys.Bottom):
		m.view.Bottom()
	case key.Matches(msg, m.keys.Toggle):
		m.view.Toggle()
	case key.Matches(msg, m.keys.Expand):
		m.view.Expand()
	case key.Matches(msg, m.keys.Collapse):
		m.view.Collapse()
	case key.Matches(msg, m.keys.Candidate):
		m.view.JumpToCandidate()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Reload):
		m.reloading = true
		return m, tea.Batch(m.load(), m.spinner.Tick)
	}
	return m, nil
}

// State returns the current application state.
func (m Model) State() AppState {
	return m.state
}

// Err returns the last analysis error, if any.
func (m Model) Err() error {
	return m.err
}

// View renders the current state.
func (m Model) View() string {
	contentWidth := max(m.width-4, 20)

	var b strings.Builder
	b.WriteString(renderAppHeader(m.result, m.options.Changes != nil))
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n")

	switch m.state {
	case StateLoading:
		b.WriteString("\n  ")
		b.WriteString(m.spinner.View())
		b.WriteString(" Analyzing ")
		b.WriteString(truncatePath(m.options.Source, contentWidth-16))
		b.WriteString("\n")

	case StateError:
		b.WriteString("\n")
		b.WriteString(errorTextStyle.Render("  Error: " + m.err.Error()))
		b.WriteString("\n")

	case StateBrowse:
		b.WriteString(renderStats(m.result))
		b.WriteString("\n")
		b.WriteString(renderDivider(contentWidth))
		b.WriteString("\n")
		b.WriteString(m.view.View(contentWidth, m.treeHeight()))
		b.WriteString(renderDivider(contentWidth))
		b.WriteString("\n")
		b.WriteString(m.renderStatus())
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return outerBoxStyle.Width(max(m.width-2, 0)).Render(b.String())
}

// treeHeight is the number of rows left for the tree once the header,
// stats, status and help lines are drawn.
func (m Model) treeHeight() int {
	chrome := 9
	if m.help.ShowAll {
		chrome += 5
	}
	return max(m.height-chrome, 1)
}

// renderStatus renders the path under the cursor and the reload state.
func (m Model) renderStatus() string {
	status := " " + mutedTextStyle.Render(m.view.SelectedPath())
	switch {
	case m.reloading:
		status += "  " + m.spinner.View() + " reloading"
	case m.err != nil:
		status += "  " + errorTextStyle.Render("reload failed: "+m.err.Error())
	default:
		status += renderMetrics(m.result)
	}
	return status
}

// load runs the analysis off the UI goroutine.
func (m Model) load() tea.Cmd {
	ctx, loadFn := m.ctx, m.options.Load
	return func() tea.Msg {
		if loadFn == nil {
			return resultMsg{err: errors.New("no load function configured")}
		}
		r, err := loadFn(ctx)
		return resultMsg{result: r, err: err}
	}
}

// listenForChanges waits for the next change notification.
func (m Model) listenForChanges() tea.Cmd {
	changes := m.options.Changes
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		path, ok := <-changes
		if !ok {
			return changesClosedMsg{}
		}
		return changeMsg{path: path}
	}
}

// Run starts the TUI application.
func Run(opts Options) error {
	model := NewModel(opts)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
