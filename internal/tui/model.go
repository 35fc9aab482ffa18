package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/HardPulse/mazpan/internal/service"
)

// Tab 表示当前页签
type Tab int

const (
	TabOverview   Tab = iota // 用户与库存概览
	TabShopToday             // 今日销售
	TabOperations            // 近 7 天资金与角色操作
)

var tabTitles = []string{"Overview", "Shop today", "Operations"}

// RefreshInterval is how often the dashboard reloads its data.
const RefreshInterval = 5 * time.Second

// Snapshot holds one round of statistics.
type Snapshot struct {
	Overview   *service.Overview
	Shop       *service.ShopStats
	Operations *service.OperationStats
	LoadedAt   time.Time
}

// Model 是主 TUI 模型
type Model struct {
	stats service.AdminStatService

	tab      Tab
	snapshot *Snapshot

	// 销售明细的选中行
	selectedProduct int

	width  int
	height int

	loading bool
	err     error

	keys keyMap
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Next    key.Binding
	Prev    key.Binding
	Quit    key.Binding
	Refresh key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next tab"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("shift+tab", "previous tab"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// NewModel 创建新的 TUI 模型
func NewModel(stats service.AdminStatService) Model {
	return Model{
		stats:   stats,
		tab:     TabOverview,
		keys:    defaultKeyMap(),
		loading: true,
	}
}

// Init 实现 tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.load(),
		tickCmd(),
	)
}

type statsLoadedMsg struct {
	snapshot *Snapshot
}

type tickMsg time.Time

func (m Model) load() tea.Cmd {
	stats := m.stats
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), RefreshInterval)
		defer cancel()
		return statsLoadedMsg{snapshot: &Snapshot{
			Overview:   stats.Overview(ctx),
			Shop:       stats.ShopToday(ctx),
			Operations: stats.Operations(ctx, service.DefaultOperationDays),
			LoadedAt:   time.Now(),
		}}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
