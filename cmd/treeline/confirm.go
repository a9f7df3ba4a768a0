package main

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func treelineHuhTheme() *huh.Theme {
	t := *huh.ThemeCharm()
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(lipgloss.Color("#2E8B57"))
	t.Focused.Next = t.Focused.FocusedButton
	return &t
}

func confirm(title, description string) (bool, error) {
	var result bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Affirmative("Yes").
			Negative("No").
			Value(&result),
	)).
		WithTheme(treelineHuhTheme()).
		WithShowHelp(false)

	if err := form.Run(); err != nil {
		return false, err
	}
	return result, nil
}
