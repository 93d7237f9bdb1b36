package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hesforge/wasmloader/wasm"
)

// exportItem adapts a wasm.Export to list.Item so it can be browsed with
// bubbles/list.
type exportItem struct {
	name string
	kind string
	idx  uint64
}

func (i exportItem) FilterValue() string { return i.name }
func (i exportItem) Title() string       { return i.name }
func (i exportItem) Description() string { return fmt.Sprintf("%s export, index %d", i.kind, i.idx) }

type browserModel struct {
	list list.Model
}

func newBrowserModel(m *wasm.Module) browserModel {
	items := make([]list.Item, len(m.Exports))
	for i, exp := range m.Exports {
		items[i] = exportItem{
			name: trimCString(exp.Name),
			kind: exportKindName(exp.Kind),
			idx:  exp.Idx,
		}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("#7D56F4")).Bold(true)

	l := list.New(items, delegate, 60, 20)
	l.Title = "exports"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)

	return browserModel{list: l}
}

func (m browserModel) Init() tea.Cmd { return nil }

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browserModel) View() string {
	return m.list.View()
}
