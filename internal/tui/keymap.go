package tui

import (
	"strings"

	"charm.land/bubbles/v2/key"
)

// defaultReorderModifier is the key modifier that turns ↑/↓ into a reorder.
const defaultReorderModifier = "alt"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit        key.Binding
	reload      key.Binding
	toggleHelp  key.Binding
	pagePrev    key.Binding
	pageNext    key.Binding
	toolbarPrev key.Binding
	toolbarNext key.Binding
	columnLeft  key.Binding
	columnRight key.Binding
	taskUp      key.Binding
	taskDown    key.Binding
	reorderUp   key.Binding
	reorderDown key.Binding
	grab        key.Binding
	cancel      key.Binding
	openTask    key.Binding
	copyID      key.Binding
	nextProject key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	k := keyMap{
		quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		pagePrev:    key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous page")),
		pageNext:    key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next page")),
		toolbarPrev: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "toolbar page back")),
		toolbarNext: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "toolbar page forward")),
		columnLeft:  key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "column left")),
		columnRight: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "column right")),
		taskUp:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		taskDown:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		grab:        key.NewBinding(key.WithKeys("space", " "), key.WithHelp("space", "grab / drop")),
		cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
		openTask:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open task")),
		copyID:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy task id")),
		nextProject: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "next project")),
	}
	k.setReorderModifier(defaultReorderModifier)
	return k
}

// setReorderModifier rebinds the keyboard reorder keys to modifier+↑/↓.
func (k *keyMap) setReorderModifier(modifier string) {
	modifier = strings.ToLower(strings.TrimSpace(modifier))
	switch modifier {
	case "alt", "ctrl", "shift":
	default:
		modifier = defaultReorderModifier
	}
	k.reorderUp = key.NewBinding(
		key.WithKeys(modifier+"+up", modifier+"+k"),
		key.WithHelp(modifier+"+↑", "move task up"),
	)
	k.reorderDown = key.NewBinding(
		key.WithKeys(modifier+"+down", modifier+"+j"),
		key.WithHelp(modifier+"+↓", "move task down"),
	)
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.pagePrev, k.pageNext, k.grab, k.reorderUp, k.reorderDown, k.openTask, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.pagePrev, k.pageNext, k.toolbarPrev, k.toolbarNext, k.nextProject, k.reload},
		{k.columnLeft, k.columnRight, k.taskUp, k.taskDown, k.openTask, k.copyID},
		{k.grab, k.cancel, k.reorderUp, k.reorderDown, k.toggleHelp, k.quit},
	}
}
