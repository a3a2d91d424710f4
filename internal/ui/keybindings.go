package ui

// KeyMode represents the keybinding mode for the UI.
type KeyMode string

const (
	// KeyModeVim enables vim-style single-key bindings.
	KeyModeVim KeyMode = "vim"
	// KeyModeFunction uses function keys only, leaving letters free.
	KeyModeFunction KeyMode = "function"
)

// DefaultKeyMode is the default keybinding mode.
const DefaultKeyMode = KeyModeVim

// Action is a UI action triggered by a key in browse mode.
type Action string

const (
	ActionNone      Action = ""
	ActionQuit      Action = "quit"
	ActionSearch    Action = "search"
	ActionWhere     Action = "where"
	ActionEdit      Action = "edit"
	ActionDelete    Action = "delete"
	ActionSort      Action = "sort"
	ActionColLeft   Action = "col_left"
	ActionColRight  Action = "col_right"
	ActionNextPage  Action = "next_page"
	ActionPrevPage  Action = "prev_page"
	ActionTop       Action = "top"
	ActionBottom    Action = "bottom"
	ActionReload    Action = "reload"
	ActionHelp      Action = "help"
	ActionClearView Action = "clear_view"
)

// vimKeyBindings maps keys to actions for vim mode.
var vimKeyBindings = map[string]Action{
	"q":      ActionQuit,
	"ctrl+c": ActionQuit,
	"/":      ActionSearch,
	"w":      ActionWhere,
	"e":      ActionEdit,
	"enter":  ActionEdit,
	"d":      ActionDelete,
	"s":      ActionSort,
	"h":      ActionColLeft,
	"left":   ActionColLeft,
	"l":      ActionColRight,
	"right":  ActionColRight,
	"n":      ActionNextPage,
	"pgdown": ActionNextPage,
	"p":      ActionPrevPage,
	"pgup":   ActionPrevPage,
	"g":      ActionTop,
	"G":      ActionBottom,
	"R":      ActionReload,
	"?":      ActionHelp,
	"f1":     ActionHelp,
	"esc":    ActionClearView,
}

// functionKeyBindings avoids letter shortcuts entirely.
var functionKeyBindings = map[string]Action{
	"ctrl+c": ActionQuit,
	"f10":    ActionQuit,
	"f1":     ActionHelp,
	"f3":     ActionSearch,
	"f4":     ActionWhere,
	"f5":     ActionReload,
	"f6":     ActionSort,
	"f7":     ActionEdit,
	"f8":     ActionDelete,
	"left":   ActionColLeft,
	"right":  ActionColRight,
	"pgdown": ActionNextPage,
	"pgup":   ActionPrevPage,
	"home":   ActionTop,
	"end":    ActionBottom,
	"esc":    ActionClearView,
}

// lookupAction resolves a key string against the active key mode.
func lookupAction(mode KeyMode, key string) Action {
	var bindings map[string]Action
	switch mode {
	case KeyModeFunction:
		bindings = functionKeyBindings
	default:
		bindings = vimKeyBindings
	}
	return bindings[key]
}

// IsValidKeyMode checks a config/flag keymap name.
func IsValidKeyMode(mode string) bool {
	switch KeyMode(mode) {
	case KeyModeVim, KeyModeFunction:
		return true
	}
	return false
}
