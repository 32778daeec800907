package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	enter  key.Binding
	back   key.Binding
	again  key.Binding
	logout key.Binding
	apiKey key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		again:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "roast again")),
		logout: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log out")),
		apiKey: key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "change API key")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.enter, k.back},
		{k.again, k.logout, k.apiKey},
		{k.quit},
	}
}
