package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wricardo/coincrate/game/engine"
	"github.com/wricardo/coincrate/game/shell"
	"github.com/wricardo/coincrate/game/solver"
)

// DefaultAutoInterval is the delay between autoplay steps
const DefaultAutoInterval = 150 * time.Millisecond

// autoStepMsg asks the model to play one solver step.
type autoStepMsg struct{}

// Model is the Bubbletea model for the terminal game.
type Model struct {
	controller *shell.Controller
	snapshot   *engine.Snapshot
	keys       KeyMap
	title      string
	message    string
	auto       bool
	interval   time.Duration
	err        error
	quitting   bool
}

// NewModel creates a model driving controller. title is shown above the board.
func NewModel(controller *shell.Controller, title string) Model {
	return Model{
		controller: controller,
		snapshot:   controller.Snapshot(),
		keys:       Keys,
		title:      title,
		interval:   DefaultAutoInterval,
	}
}

// WithAutoplay starts the model with the solver playing every interval
func (m Model) WithAutoplay(interval time.Duration) Model {
	m.auto = true
	if interval > 0 {
		m.interval = interval
	}
	return m
}

// Snapshot returns the round as last rendered
func (m Model) Snapshot() *engine.Snapshot {
	return m.snapshot
}

// Err returns the error that stopped the program, if any
func (m Model) Err() error {
	return m.err
}

// Init schedules the first autoplay step when autoplay is on.
func (m Model) Init() tea.Cmd {
	if m.auto {
		return m.tick()
	}
	return nil
}

// Update handles key presses and autoplay ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case autoStepMsg:
		if !m.auto {
			return m, nil
		}
		if m.snapshot.Status == engine.Won {
			m.auto = false
			return m, nil
		}
		dir, ok := solver.NextStep(m.snapshot)
		if !ok {
			m.auto = false
			m.message = "No coin can be reached. Press R for a new round."
			return m, nil
		}
		m = m.apply(shell.Move(dir))
		return m, m.tick()
	}

	return m, nil
}

// View renders the coin counter, the board and the win banner or help line.
func (m Model) View() string {
	if m.quitting {
		return "BBye!\n"
	}

	var sections []string
	if m.title != "" {
		sections = append(sections, titleStyle.Render(m.title))
	}
	sections = append(sections,
		headerStyle.Render(fmt.Sprintf("Coins: %d/%d", m.snapshot.CoinsCollected, m.snapshot.TotalCoins)),
		boardBorderStyle.Render(RenderBoard(m.snapshot)),
	)

	switch {
	case m.err != nil:
		sections = append(sections, errorStyle.Render("Error: "+m.err.Error()))
	case m.snapshot.Status == engine.Won:
		sections = append(sections, winStyle.Render(shell.WinBanner))
	case m.message != "":
		sections = append(sections, messageStyle.Render(m.message))
	}

	sections = append(sections, helpStyle.Render(m.helpView()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Restart):
		m = m.apply(shell.Restart())
	case key.Matches(msg, m.keys.Up):
		m = m.apply(shell.Move(engine.Up))
	case key.Matches(msg, m.keys.Down):
		m = m.apply(shell.Move(engine.Down))
	case key.Matches(msg, m.keys.Left):
		m = m.apply(shell.Move(engine.Left))
	case key.Matches(msg, m.keys.Right):
		m = m.apply(shell.Move(engine.Right))
	case key.Matches(msg, m.keys.Hint):
		m.message = hintMessage(m.snapshot)
	case key.Matches(msg, m.keys.Auto):
		m.auto = !m.auto
		if m.auto {
			m.message = "Autoplay on"
			return m, m.tick()
		}
		m.message = "Autoplay off"
	}

	return m, nil
}

// apply runs one intent through the controller and records the outcome
func (m Model) apply(intent shell.Intent) Model {
	result, err := m.controller.Apply(intent)
	if err != nil {
		m.err = err
		return m
	}
	m.err = nil
	if result.Snapshot != nil {
		m.snapshot = result.Snapshot
	}

	switch {
	case result.Restarted:
		m.message = "New round started"
	case result.Ignored:
		m.message = "Round already won"
	case result.Outcome == engine.Blocked:
		m.message = fmt.Sprintf("Can't move %s", intent.Direction)
	case result.Outcome == engine.Pushed:
		m.message = fmt.Sprintf("Pushed a box %s", intent.Direction)
	case result.Outcome == engine.CoinCollected:
		m.message = "Coin collected!"
	default:
		m.message = ""
	}
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return autoStepMsg{}
	})
}

func (m Model) helpView() string {
	parts := make([]string, 0, len(m.keys.helpBindings()))
	for _, b := range m.keys.helpBindings() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

func hintMessage(s *engine.Snapshot) string {
	if s.Status == engine.Won {
		return "Round already won"
	}
	path, ok := solver.PathToNearestCoin(s)
	if !ok {
		path, ok = solver.SearchWithPushes(s, solver.DefaultSearchLimit)
	}
	if !ok || len(path) == 0 {
		return "No coin can be reached. Press R for a new round."
	}
	return fmt.Sprintf("Hint: go %s, nearest coin is %d moves away", path[0], len(path))
}

// Run starts the terminal game on the alternate screen and blocks until the
// player quits or ctx is cancelled.
func Run(ctx context.Context, m Model) (Model, error) {
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return m, err
	}
	if fm, ok := final.(Model); ok {
		return fm, fm.err
	}
	return m, nil
}
