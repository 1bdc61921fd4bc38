package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left       key.Binding
	Right      key.Binding
	PrevMonth  key.Binding
	NextMonth  key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	SelectDay  key.Binding
	SelectMon  key.Binding
	SelectYear key.Binding
	Clear      key.Binding
	Today      key.Binding
	Sort       key.Binding
	Add        key.Binding
	Reload     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:       key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "previous day")),
		Right:      key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "next day")),
		PrevMonth:  key.NewBinding(key.WithKeys("H", "shift+left"), key.WithHelp("H", "previous month")),
		NextMonth:  key.NewBinding(key.WithKeys("L", "shift+right"), key.WithHelp("L", "next month")),
		ZoomIn:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		SelectDay:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "toggle day")),
		SelectMon:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "toggle month")),
		SelectYear: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "toggle year")),
		Clear:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear selection")),
		Today:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "jump to today")),
		Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle sort")),
		Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add subscription")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.ZoomIn, k.ZoomOut, k.SelectMon, k.Today, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.PrevMonth, k.NextMonth, k.Today},
		{k.ZoomIn, k.ZoomOut, k.SelectDay, k.SelectMon, k.SelectYear, k.Clear},
		{k.Sort, k.Add, k.Reload, k.Help, k.Quit},
	}
}
