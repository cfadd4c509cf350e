package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

const emptyCellSymbol = "."

var (
	xStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#007e50ff", Dark: "#6afd76ff"}).Render
	oStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#0003adff", Dark: "#5f61fcff"}).Render
	emptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#414141ff", Dark: "#8f8f8fff"}).Render
	winningStyle = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.AdaptiveColor{Light: "#bb0000ff", Dark: "#df1010ff"}).Render
	indexStyle   = lipgloss.NewStyle().Faint(true).Render

	frameStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Board - draws the position with row and column indexes. A completed line is highlighted.
func Board(state entity.GameState) string {
	var winning [entity.BoardSize][entity.BoardSize]bool
	if line, ok := state.WinningLine(); ok {
		for _, move := range line {
			winning[move.Row][move.Col] = true
		}
	}

	var sb strings.Builder

	sb.WriteString(" ")
	for col := range entity.BoardSize {
		sb.WriteString(" " + indexStyle(fmt.Sprint(col)))
	}

	for row := range entity.BoardSize {
		sb.WriteString("\n" + indexStyle(fmt.Sprint(row)))

		for col := range entity.BoardSize {
			sb.WriteString(" " + cell(state.Cell(row, col), winning[row][col]))
		}
	}

	return frameStyle.Render(sb.String())
}

// Mark - a mark in its player's color.
func Mark(mark entity.Mark) string {
	return cell(mark, false)
}

// Status - what happens next: whose turn it is, or how the game ended.
func Status(state entity.GameState) string {
	switch outcome := state.Outcome(); outcome {
	case entity.XWins, entity.OWins:
		return winningStyle(string(outcome.Winner()) + " wins!")
	case entity.Draw:
		return "It's a draw."
	default:
		return Mark(state.Turn) + " to move"
	}
}

func cell(mark entity.Mark, winning bool) string {
	switch {
	case mark == entity.EmptyCell:
		return emptyStyle(emptyCellSymbol)
	case winning:
		return winningStyle(string(mark))
	case mark == entity.PlayerX:
		return xStyle(string(mark))
	default:
		return oStyle(string(mark))
	}
}
