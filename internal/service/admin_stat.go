// 文件路径: internal/service/admin_stat.go
// 模块说明: 后台统计。读取失败只记录日志并返回空结果，不让整个请求失败。
package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/support/money"
)

// DefaultOperationDays is the window of AdminStatService.Operations.
const DefaultOperationDays = 7

// AdminStatService aggregates shop and ledger statistics.
type AdminStatService interface {
	ShopToday(ctx context.Context) *ShopStats
	Operations(ctx context.Context, days int) *OperationStats
	Overview(ctx context.Context) *Overview
}

// ProductSales is one row of the per-product breakdown.
type ProductSales struct {
	ProductID    string          `json:"product_id"`
	ProductTitle string          `json:"product_title"`
	Purchases    int64           `json:"purchases"`
	Units        int64           `json:"units"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// ShopStats summarises sales since UTC midnight.
type ShopStats struct {
	Date         string          `json:"date"`
	Purchases    int64           `json:"purchases"`
	Units        int64           `json:"units"`
	Revenue      decimal.Decimal `json:"revenue"`
	UniqueBuyers int64           `json:"unique_buyers"`
	Products     []ProductSales  `json:"products"`
}

// OperationTotal 某一类日志的次数与金额合计。
type OperationTotal struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// OperationDay groups one UTC day of ledger operations by log type.
type OperationDay struct {
	Date  string                                     `json:"date"`
	Types map[repository.UserLogType]*OperationTotal `json:"types"`
}

// OperationStats covers the last N UTC days, oldest first.
type OperationStats struct {
	From   string                                     `json:"from"`
	To     string                                     `json:"to"`
	Days   []OperationDay                             `json:"days"`
	Totals map[repository.UserLogType]*OperationTotal `json:"totals"`
}

// Overview counts users for the dashboard.
type Overview struct {
	Users    int64                     `json:"users"`
	Approved int64                     `json:"approved"`
	Pending  int64                     `json:"pending"`
	Blocked  int64                     `json:"blocked"`
	Roles    map[repository.Role]int64 `json:"roles"`
	Accounts int64                     `json:"accounts"`
	Products int64                     `json:"products"`
}

type adminStatService struct {
	store  repository.Store
	clock  Clock
	logger *slog.Logger
}

// NewAdminStatService 构造统计服务。
func NewAdminStatService(store repository.Store, clock Clock, logger *slog.Logger) AdminStatService {
	return &adminStatService{store: store, clock: clock, logger: discardLogger(logger)}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *adminStatService) ShopToday(ctx context.Context) *ShopStats {
	midnight := startOfDay(s.clock.now())
	stats := &ShopStats{
		Date:     midnight.Format(time.DateOnly),
		Revenue:  decimal.Zero,
		Products: []ProductSales{},
	}

	summaries, err := s.store.Purchases().SummarizeSince(ctx, midnight.Unix())
	if err != nil {
		s.logger.WarnContext(ctx, "shop statistics unavailable", "error", err)
		return stats
	}
	var revenue int64
	for _, row := range summaries {
		stats.Purchases += row.Purchases
		stats.Units += row.Units
		revenue += row.RevenueCents
		stats.Products = append(stats.Products, ProductSales{
			ProductID:    row.ProductID,
			ProductTitle: row.ProductTitle,
			Purchases:    row.Purchases,
			Units:        row.Units,
			Revenue:      money.FromCents(row.RevenueCents),
		})
	}
	stats.Revenue = money.FromCents(revenue)

	buyers, err := s.store.Purchases().CountBuyersSince(ctx, midnight.Unix())
	if err != nil {
		s.logger.WarnContext(ctx, "buyer count unavailable", "error", err)
		return stats
	}
	stats.UniqueBuyers = buyers
	return stats
}

func addOperation(totals map[repository.UserLogType]*OperationTotal, entry *repository.UserLog) {
	t, ok := totals[entry.Type]
	if !ok {
		t = &OperationTotal{Amount: decimal.Zero}
		totals[entry.Type] = t
	}
	t.Count++
	t.Amount = t.Amount.Add(money.FromCents(entry.AmountCents))
}

func (s *adminStatService) Operations(ctx context.Context, days int) *OperationStats {
	if days <= 0 {
		days = DefaultOperationDays
	}
	today := startOfDay(s.clock.now())
	from := today.AddDate(0, 0, -(days - 1))

	stats := &OperationStats{
		From:   from.Format(time.DateOnly),
		To:     today.Format(time.DateOnly),
		Days:   make([]OperationDay, days),
		Totals: map[repository.UserLogType]*OperationTotal{},
	}
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i).Format(time.DateOnly)
		stats.Days[i] = OperationDay{Date: date, Types: map[repository.UserLogType]*OperationTotal{}}
		index[date] = i
	}

	entries, err := s.store.UserLogs().ListSince(ctx, from.Unix())
	if err != nil {
		s.logger.WarnContext(ctx, "operation statistics unavailable", "error", err)
		return stats
	}
	for _, entry := range entries {
		date := time.Unix(entry.CreatedAt, 0).UTC().Format(time.DateOnly)
		i, ok := index[date]
		if !ok {
			continue
		}
		addOperation(stats.Days[i].Types, entry)
		addOperation(stats.Totals, entry)
	}
	return stats
}

func (s *adminStatService) Overview(ctx context.Context) *Overview {
	overview := &Overview{Roles: map[repository.Role]int64{}}
	users, err := s.store.Users().List(ctx, repository.UserFilter{})
	if err != nil {
		s.logger.WarnContext(ctx, "user overview unavailable", "error", err)
	}
	for _, u := range users {
		overview.Users++
		if u.Approved {
			overview.Approved++
		} else {
			overview.Pending++
		}
		if u.Blocked {
			overview.Blocked++
		}
	}
	roles, err := s.store.Users().CountByRole(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "role overview unavailable", "error", err)
	}
	for _, rc := range roles {
		overview.Roles[rc.Role] = rc.Count
	}
	if n, err := s.store.Accounts().Count(ctx); err == nil {
		overview.Accounts = n
	}
	if products, err := s.store.Products().List(ctx, repository.ProductFilter{}); err == nil {
		overview.Products = int64(len(products))
	}
	return overview
}

// SortedTypes returns the log types present in totals in a stable order.
func SortedTypes(totals map[repository.UserLogType]*OperationTotal) []repository.UserLogType {
	types := make([]repository.UserLogType, 0, len(totals))
	for t := range totals {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
