package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/service"
)

type fakeStats struct {
	calls int
	days  int
}

func (f *fakeStats) ShopToday(context.Context) *service.ShopStats {
	f.calls++
	return &service.ShopStats{
		Date:      "2025-03-10",
		Purchases: 2,
		Units:     3,
		Revenue:   decimal.New(750, -2),
		Products: []service.ProductSales{
			{ProductID: "p1", ProductTitle: "Gmail aged", Purchases: 1, Units: 2, Revenue: decimal.New(500, -2)},
			{ProductID: "p2", ProductTitle: "Guide", Purchases: 1, Units: 1, Revenue: decimal.New(250, -2)},
		},
	}
}

func (f *fakeStats) Operations(_ context.Context, days int) *service.OperationStats {
	f.days = days
	total := &service.OperationTotal{Count: 1, Amount: decimal.New(1000, -2)}
	return &service.OperationStats{
		From: "2025-03-04",
		To:   "2025-03-10",
		Days: []service.OperationDay{{
			Date:  "2025-03-10",
			Types: map[repository.UserLogType]*service.OperationTotal{repository.UserLogRolePurchase: total},
		}},
		Totals: map[repository.UserLogType]*service.OperationTotal{repository.UserLogRolePurchase: total},
	}
}

func (f *fakeStats) Overview(context.Context) *service.Overview {
	return &service.Overview{
		Users: 4, Approved: 3, Pending: 1,
		Roles: map[repository.Role]int64{repository.RoleUser: 3, repository.RoleAdmin: 1},
	}
}

func loaded(t *testing.T, stats *fakeStats) Model {
	t.Helper()
	m := NewModel(stats)
	msg := m.load()()
	next, _ := m.Update(msg)
	next, _ = next.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func TestLoadFillsSnapshot(t *testing.T) {
	stats := &fakeStats{}
	m := loaded(t, stats)

	require.NotNil(t, m.snapshot)
	assert.False(t, m.loading)
	assert.Equal(t, 1, stats.calls)
	assert.Equal(t, service.DefaultOperationDays, stats.days)
	assert.Equal(t, int64(4), m.snapshot.Overview.Users)
}

func TestTabSwitchingWraps(t *testing.T) {
	m := loaded(t, &fakeStats{})

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabShopToday, next.(Model).tab)

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyTab})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabOverview, next.(Model).tab)

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, TabOperations, next.(Model).tab)
}

func TestProductSelectionWraps(t *testing.T) {
	m := loaded(t, &fakeStats{})
	m.tab = TabShopToday

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, next.(Model).selectedProduct)

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, next.(Model).selectedProduct)
}

func TestRefreshAndQuit(t *testing.T) {
	stats := &fakeStats{}
	m := loaded(t, stats)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	assert.True(t, next.(Model).loading)
	cmd()
	assert.Equal(t, 2, stats.calls)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestViewRendersEachTab(t *testing.T) {
	m := loaded(t, &fakeStats{})

	assert.Contains(t, m.View(), "Approved")

	m.tab = TabShopToday
	view := m.View()
	assert.Contains(t, view, "Gmail aged")
	assert.Contains(t, view, "7.50")

	m.tab = TabOperations
	view = m.View()
	assert.Contains(t, view, string(repository.UserLogRolePurchase))
	assert.Contains(t, view, "10.00")
}

func TestViewBeforeSize(t *testing.T) {
	assert.Equal(t, "Loading...", NewModel(&fakeStats{}).View())
}
