package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleCorrect   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleIncorrect = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleWarn      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleWord      = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	styleHighlight = lipgloss.NewStyle().Background(lipgloss.Color("22")).Foreground(lipgloss.Color("15"))
	styleCursor    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	styleSubtle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleHeader    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleError     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(1)
	styleBarGreen  = lipgloss.NewStyle().Background(lipgloss.Color("10")).SetString(" ")
	styleBarRed    = lipgloss.NewStyle().Background(lipgloss.Color("9")).SetString(" ")
)

func renderBar(fraction float64, width int) string {
	fraction = min(max(fraction, 0), 1)
	green := int(fraction * float64(width))
	return strings.Repeat(styleBarGreen.String(), green) + strings.Repeat(styleBarRed.String(), width-green)
}

func hearts(lives int) string {
	return strings.Repeat("♥", lives)
}
