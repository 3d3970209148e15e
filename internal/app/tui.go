package app

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/relabs-tech/deviceinfo/internal/config"
	"github.com/relabs-tech/deviceinfo/internal/orientation"
	"github.com/relabs-tech/deviceinfo/internal/render"
)

var (
	colorAccent = lipgloss.Color("#89b4fa")
	colorMuted  = lipgloss.Color("#7f849c")

	iconStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

// Glyphs are drawn upright; landscape orientations swap them for the
// rotated variant.
var iconGlyphs = map[render.Icon][2]string{
	render.PhoneIcon:   {"┌──┐\n│  │\n│  │\n└──┘", "┌────┐\n│    │\n└────┘"},
	render.TabletIcon:  {"┌────┐\n│    │\n│    │\n│    │\n└────┘", "┌────────┐\n│        │\n│        │\n└────────┘"},
	render.DesktopIcon: {"┌──────┐\n│      │\n└──────┘\n ▔▔▔▔▔▔", "┌──────┐\n│      │\n└──────┘\n ▔▔▔▔▔▔"},
}

// refreshMsg tells the model the state changed. The model reads the state
// itself, so a late message can never bring back an older state.
type refreshMsg struct{}

type tuiModel struct {
	source func() orientation.State
	state  orientation.State
	width  int
}

func newTUIModel(source func() orientation.State) tuiModel {
	return tuiModel{source: source, state: source()}
}

func refresh() tea.Msg { return refreshMsg{} }

// Init refreshes once, covering changes made before the watcher existed.
func (m tuiModel) Init() tea.Cmd { return refresh }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.state = m.source()
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m tuiModel) View() string {
	glyphs := iconGlyphs[render.IconFor(m.state.Device)]
	glyph := glyphs[0]
	if m.state.Coarse == orientation.CoarseLandscape {
		glyph = glyphs[1]
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		iconStyle.Render(glyph),
		labelStyle.Render(render.Label(m.state)),
		mutedStyle.Render(render.InterfaceLabel(m.state)),
		mutedStyle.Render("q to quit"),
	)
	if m.width > 0 {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, body)
	}
	return body
}

// RunTUI shows the device state in the terminal until the user quits or
// ctx is done.
func RunTUI(ctx context.Context) error {
	// The alternate screen owns stdout and stderr; log to a file instead.
	logFile, err := tea.LogToFile("deviceinfo-tui.log", "tui")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	m, err := startManager(config.Get())
	if err != nil {
		return err
	}
	defer m.Stop()

	p := tea.NewProgram(newTUIModel(m.State), tea.WithContext(ctx), tea.WithAltScreen())
	unwatch := m.Watch(func(orientation.State) { p.Send(refreshMsg{}) })
	defer unwatch()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
