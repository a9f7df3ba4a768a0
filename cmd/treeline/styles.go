package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2E8B57"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("251"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2E8B57")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)

	cleanStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	dirtyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	addStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	delStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	ctxStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	badgeWorking = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	badgePending = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
)

func init() {
	if !termenv.HasDarkBackground() {
		normalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
		ctxStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
		dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	}
}

func padOrTrim(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		if width <= 1 {
			return string(runes[:width])
		}
		return string(runes[:width-1]) + "…"
	}
	for len(runes) < width {
		runes = append(runes, ' ')
	}
	return string(runes)
}
