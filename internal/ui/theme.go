package ui

import (
	"image/color"
	"sync"

	"charm.land/lipgloss/v2"
)

// Theme defines the colors used across the UI.
type Theme struct {
	HeaderFG    color.Color // Table header text
	HeaderBG    color.Color // Table header background
	SelectedFG  color.Color // Selected row foreground
	SelectedBG  color.Color // Selected row background
	SortColumn  color.Color // Header cell of the sorted column
	StatusColor color.Color // Normal status bar text
	StatusError color.Color // Error status bar text
	FooterFG    color.Color // Footer key labels
	FooterBG    color.Color // Footer background
	HelpKey     color.Color // Help overlay key labels
	HelpValue   color.Color // Help overlay descriptions
	InputFG     color.Color // Input line text
}

var (
	themeMu      sync.RWMutex
	currentTheme = DarkTheme()
)

// DarkTheme is the default palette.
func DarkTheme() Theme {
	return Theme{
		HeaderFG:    lipgloss.Color("81"),
		HeaderBG:    lipgloss.Color("236"),
		SelectedFG:  lipgloss.Color("250"),
		SelectedBG:  lipgloss.Color("240"),
		SortColumn:  lipgloss.Color("214"),
		StatusColor: lipgloss.Color("246"),
		StatusError: lipgloss.Color("196"),
		FooterFG:    lipgloss.Color("15"),
		FooterBG:    lipgloss.Color("240"),
		HelpKey:     lipgloss.Color("81"),
		HelpValue:   lipgloss.Color("248"),
		InputFG:     lipgloss.Color("15"),
	}
}

// LightTheme suits terminals with light backgrounds.
func LightTheme() Theme {
	return Theme{
		HeaderFG:    lipgloss.Color("18"),
		HeaderBG:    lipgloss.Color("253"),
		SelectedFG:  lipgloss.Color("16"),
		SelectedBG:  lipgloss.Color("251"),
		SortColumn:  lipgloss.Color("130"),
		StatusColor: lipgloss.Color("240"),
		StatusError: lipgloss.Color("124"),
		FooterFG:    lipgloss.Color("16"),
		FooterBG:    lipgloss.Color("252"),
		HelpKey:     lipgloss.Color("18"),
		HelpValue:   lipgloss.Color("238"),
		InputFG:     lipgloss.Color("16"),
	}
}

// ThemeByName resolves a config/flag theme name.
func ThemeByName(name string) (Theme, bool) {
	switch name {
	case "", "dark":
		return DarkTheme(), true
	case "light":
		return LightTheme(), true
	}
	return Theme{}, false
}

// CurrentTheme returns the active theme.
func CurrentTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// SetCurrentTheme swaps the active theme.
func SetCurrentTheme(t Theme) {
	themeMu.Lock()
	defer themeMu.Unlock()
	currentTheme = t
}
