package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wricardo/coincrate/game/engine"
)

var (
	// Tile styles
	wallStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555"))

	floorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2e2e4e"))

	obstacleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A0772B")).
			Bold(true)

	coinStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	playerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ff88")).
			Bold(true)

	// HUD styles
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff8844")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#44aaff")).
			Bold(true)

	boardBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#444466")).
				Padding(0, 1)

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ff88")).
			Bold(true)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#aaaaaa"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff4444"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func cellStyle(c engine.Cell) lipgloss.Style {
	switch c {
	case engine.Wall:
		return wallStyle
	case engine.Obstacle:
		return obstacleStyle
	case engine.Coin:
		return coinStyle
	case engine.Player:
		return playerStyle
	}
	return floorStyle
}

// RenderBoard draws the grid with one styled glyph per cell
func RenderBoard(s *engine.Snapshot) string {
	if s == nil || len(s.Grid) == 0 {
		return "No round in progress"
	}

	rows := make([]string, 0, len(s.Grid))
	for _, line := range s.Grid {
		var b strings.Builder
		for _, cell := range line {
			b.WriteString(cellStyle(cell).Render(string(cell.Glyph())))
		}
		rows = append(rows, b.String())
	}
	return strings.Join(rows, "\n")
}
