package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case statsLoadedMsg:
		m.loading = false
		m.snapshot = msg.snapshot
		m.err = nil
		m.clampSelection()
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.load(), tickCmd())
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Next):
		m.tab = (m.tab + 1) % Tab(len(tabTitles))
		m.selectedProduct = 0

	case key.Matches(msg, m.keys.Prev):
		m.tab = (m.tab + Tab(len(tabTitles)) - 1) % Tab(len(tabTitles))
		m.selectedProduct = 0

	case key.Matches(msg, m.keys.Up):
		if n := m.productRows(); n > 0 {
			m.selectedProduct--
			if m.selectedProduct < 0 {
				m.selectedProduct = n - 1
			}
		}

	case key.Matches(msg, m.keys.Down):
		if n := m.productRows(); n > 0 {
			m.selectedProduct++
			if m.selectedProduct >= n {
				m.selectedProduct = 0
			}
		}

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.load()
	}

	return m, nil
}

func (m Model) productRows() int {
	if m.tab != TabShopToday || m.snapshot == nil || m.snapshot.Shop == nil {
		return 0
	}
	return len(m.snapshot.Shop.Products)
}

func (m *Model) clampSelection() {
	if m.snapshot == nil || m.snapshot.Shop == nil || m.selectedProduct >= len(m.snapshot.Shop.Products) {
		m.selectedProduct = 0
	}
}
