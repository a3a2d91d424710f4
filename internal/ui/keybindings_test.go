package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupActionVimMode(t *testing.T) {
	assert.Equal(t, ActionSearch, lookupAction(KeyModeVim, "/"))
	assert.Equal(t, ActionSort, lookupAction(KeyModeVim, "s"))
	assert.Equal(t, ActionDelete, lookupAction(KeyModeVim, "d"))
	assert.Equal(t, ActionQuit, lookupAction(KeyModeVim, "q"))
	assert.Equal(t, ActionNone, lookupAction(KeyModeVim, "x"))
}

func TestLookupActionFunctionMode(t *testing.T) {
	assert.Equal(t, ActionSearch, lookupAction(KeyModeFunction, "f3"))
	assert.Equal(t, ActionQuit, lookupAction(KeyModeFunction, "f10"))
	// Letters stay free for future text entry in function mode.
	assert.Equal(t, ActionNone, lookupAction(KeyModeFunction, "q"))
	assert.Equal(t, ActionNone, lookupAction(KeyModeFunction, "/"))
}

func TestIsValidKeyMode(t *testing.T) {
	assert.True(t, IsValidKeyMode("vim"))
	assert.True(t, IsValidKeyMode("function"))
	assert.False(t, IsValidKeyMode("emacs"))
	assert.False(t, IsValidKeyMode(""))
}

func TestThemeByName(t *testing.T) {
	_, ok := ThemeByName("dark")
	assert.True(t, ok)
	_, ok = ThemeByName("light")
	assert.True(t, ok)
	_, ok = ThemeByName("")
	assert.True(t, ok)
	_, ok = ThemeByName("solarized")
	assert.False(t, ok)
}

func TestRenderHelpListsBothKeySets(t *testing.T) {
	vim := renderHelp(KeyModeVim, true, 120)
	assert.Contains(t, vim, "j / k")
	assert.Contains(t, vim, "search")

	fn := renderHelp(KeyModeFunction, true, 120)
	assert.Contains(t, fn, "F3")
	assert.NotContains(t, fn, "j / k")
}

func TestFooterHintsFollowMode(t *testing.T) {
	browse := FooterModel{KeyMode: KeyModeVim, NoColor: true, Width: 200}.View()
	assert.Contains(t, browse, "search")
	assert.Contains(t, browse, "quit")

	confirm := FooterModel{KeyMode: KeyModeVim, Mode: modeConfirmDelete, NoColor: true, Width: 200}.View()
	assert.Contains(t, confirm, "delete")
	assert.Contains(t, confirm, "keep")
}

func TestTruncateLine(t *testing.T) {
	assert.Equal(t, "short", truncateLine("short", 80))
	long := strings.Repeat("a", 100)
	got := truncateLine(long, 20)
	assert.Equal(t, 20, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
}
