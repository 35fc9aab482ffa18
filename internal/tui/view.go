package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/service"
)

// View 实现 tea.Model
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(styleHeader.Width(m.width).Render("  Mazpan Admin Dashboard"))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(styleError.Render(fmt.Sprintf("  Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	if m.snapshot == nil {
		b.WriteString(styleMuted().Render("  Loading..."))
		b.WriteString("\n")
		return b.String()
	}

	switch m.tab {
	case TabOverview:
		b.WriteString(m.renderOverview())
	case TabShopToday:
		b.WriteString(m.renderShopToday())
	case TabOperations:
		b.WriteString(m.renderOperations())
	}

	b.WriteString("\n\n")
	status := fmt.Sprintf("  Updated %s", m.snapshot.LoadedAt.Format("15:04:05"))
	if m.loading {
		status += "  (refreshing)"
	}
	b.WriteString(styleMuted().Render(status))
	b.WriteString("\n")
	b.WriteString(styleHelp.Render("  [Tab] Switch  [↑/↓] Navigate  [r] Refresh  [q] Quit"))
	return b.String()
}

func (m Model) renderTabs() string {
	parts := make([]string, len(tabTitles))
	for i, title := range tabTitles {
		if Tab(i) == m.tab {
			parts[i] = styleTabActive.Render(title)
		} else {
			parts[i] = styleTab.Render(title)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderOverview() string {
	ov := m.snapshot.Overview
	if ov == nil {
		return styleMuted().Render("  No data.")
	}

	rows := []string{
		m.renderLabelValue("Users", fmt.Sprintf("%d", ov.Users)),
		m.renderLabelValue("Approved", stylePositive.Render(fmt.Sprintf("%d", ov.Approved))),
		m.renderLabelValue("Pending", styleWarning.Render(fmt.Sprintf("%d", ov.Pending))),
		m.renderLabelValue("Blocked", styleError.Render(fmt.Sprintf("%d", ov.Blocked))),
		m.renderLabelValue("Accounts", fmt.Sprintf("%d", ov.Accounts)),
		m.renderLabelValue("Products", fmt.Sprintf("%d", ov.Products)),
		"",
	}
	for _, role := range repository.Roles {
		count := ov.Roles[role]
		percent := 0.0
		if ov.Users > 0 {
			percent = float64(count) * 100 / float64(ov.Users)
		}
		rows = append(rows, m.renderLabelValue(string(role),
			fmt.Sprintf("%s %d", ProgressBar(percent, 20), count)))
	}
	return styleBox.Render(strings.Join(rows, "\n"))
}

func (m Model) renderShopToday() string {
	shop := m.snapshot.Shop
	if shop == nil {
		return styleMuted().Render("  No data.")
	}

	var b strings.Builder
	summary := []string{
		m.renderLabelValue("Date", shop.Date),
		m.renderLabelValue("Purchases", fmt.Sprintf("%d", shop.Purchases)),
		m.renderLabelValue("Units", fmt.Sprintf("%d", shop.Units)),
		m.renderLabelValue("Revenue", stylePositive.Render("$"+shop.Revenue.StringFixed(2))),
		m.renderLabelValue("Unique buyers", fmt.Sprintf("%d", shop.UniqueBuyers)),
	}
	b.WriteString(styleBox.Render(strings.Join(summary, "\n")))
	b.WriteString("\n\n")

	header := fmt.Sprintf("  %-32s │ %-9s │ %-6s │ %s", "Product", "Purchases", "Units", "Revenue")
	b.WriteString(styleTableHeader.Width(m.width).Render(header))
	b.WriteString("\n")
	if len(shop.Products) == 0 {
		b.WriteString(styleMuted().Render("  No sales yet today."))
		return b.String()
	}

	for i, p := range shop.Products {
		row := fmt.Sprintf("  %-32s │ %-9d │ %-6d │ $%s",
			truncate(p.ProductTitle, 32), p.Purchases, p.Units, p.Revenue.StringFixed(2))
		if i == m.selectedProduct {
			b.WriteString(styleTableRowSelected.Width(m.width).Render(row))
		} else {
			b.WriteString(styleTableRow.Render(row))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderOperations() string {
	ops := m.snapshot.Operations
	if ops == nil {
		return styleMuted().Render("  No data.")
	}

	types := operationTypes(ops)
	var b strings.Builder
	b.WriteString(styleMuted().Render(fmt.Sprintf("  %s → %s", ops.From, ops.To)))
	b.WriteString("\n\n")

	cols := []string{fmt.Sprintf("%-10s", "Date")}
	for _, t := range types {
		cols = append(cols, fmt.Sprintf("%-20s", t))
	}
	b.WriteString(styleTableHeader.Width(m.width).Render("  " + strings.Join(cols, " │ ")))
	b.WriteString("\n")

	for _, day := range ops.Days {
		cells := []string{fmt.Sprintf("%-10s", day.Date)}
		for _, t := range types {
			cells = append(cells, fmt.Sprintf("%-20s", formatTotal(day.Types[t])))
		}
		b.WriteString(styleTableRow.Render("  " + strings.Join(cells, " │ ")))
		b.WriteString("\n")
	}

	b.WriteString(styleMuted().Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")
	totals := []string{fmt.Sprintf("%-10s", "Total")}
	for _, t := range types {
		totals = append(totals, fmt.Sprintf("%-20s", formatTotal(ops.Totals[t])))
	}
	b.WriteString(styleTableRow.Bold(true).Render("  " + strings.Join(totals, " │ ")))
	return b.String()
}

func (m Model) renderLabelValue(label, value string) string {
	return styleLabel.Render(label) + styleValue.Render(value)
}

func operationTypes(ops *service.OperationStats) []repository.UserLogType {
	types := make([]repository.UserLogType, 0, len(ops.Totals))
	for t := range ops.Totals {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func formatTotal(t *service.OperationTotal) string {
	if t == nil {
		return "-"
	}
	return fmt.Sprintf("%d / $%s", t.Count, t.Amount.StringFixed(2))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
