package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/HardPulse/mazpan/internal/service"
	"github.com/HardPulse/mazpan/internal/support/logging"
	"github.com/HardPulse/mazpan/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Launch interactive statistics dashboard",
	Long:  "Launch a terminal UI showing users, today's sales and recent balance operations, refreshed every few seconds.",
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	// 全屏界面下不输出日志。
	stats := service.NewAdminStatService(a.store, nil, logging.Discard())
	p := tea.NewProgram(
		tui.NewModel(stats),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
