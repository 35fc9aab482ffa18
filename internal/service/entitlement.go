// 文件路径: internal/service/entitlement.go
// 模块说明: 临时角色（Super User / VIP User）的购买、续期与懒过期。
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/security"
	"github.com/HardPulse/mazpan/internal/support/money"
	"github.com/HardPulse/mazpan/internal/telemetry"
)

// EntitlementService sells and renews time-limited roles.
type EntitlementService interface {
	// Reconcile downgrades every expired temporary role.
	Reconcile(ctx context.Context) error
	RoleInfo(ctx context.Context, userID string) (*RoleInfo, error)
	Upgrade(ctx context.Context, userID string, target repository.Role) (*UpgradeResult, error)
}

// EntitlementOptions 配置价格、时长与 VIP 名额。
type EntitlementOptions struct {
	VIPCap    int
	GrantDays int
	Prices    map[repository.Role]int64
}

// DefaultRolePrices in cents.
var DefaultRolePrices = map[repository.Role]int64{
	repository.RoleSuperUser: 2500,
	repository.RoleVIPUser:   6000,
}

// upgradePaths lists the roles each role may buy.
var upgradePaths = map[repository.Role][]repository.Role{
	repository.RoleUser:      {repository.RoleSuperUser, repository.RoleVIPUser},
	repository.RoleSuperUser: {repository.RoleVIPUser},
	repository.RoleVIPUser:   {repository.RoleVIPUser},
}

// UpgradeOption is one purchasable role.
type UpgradeOption struct {
	Role         repository.Role `json:"role"`
	Price        decimal.Decimal `json:"price"`
	DurationDays int             `json:"duration_days"`
	Affordable   bool            `json:"affordable"`
}

// RoleInfo 描述当前角色与可购买的升级。
type RoleInfo struct {
	Role             repository.Role `json:"role"`
	RoleExpiresAt    *int64          `json:"role_expires_at"`
	RemainingSeconds int64           `json:"remaining_seconds"`
	Balance          decimal.Decimal `json:"balance"`
	Upgrades         []UpgradeOption `json:"available_upgrades"`
	VIPSlotsLeft     int64           `json:"vip_slots_left"`
	VIPCap           int             `json:"vip_cap"`
}

// UpgradeResult is returned after a successful purchase.
type UpgradeResult struct {
	Role          repository.Role `json:"role"`
	RoleExpiresAt int64           `json:"role_expires_at"`
	Balance       decimal.Decimal `json:"balance"`
	Charged       decimal.Decimal `json:"charged"`
}

type entitlementService struct {
	store  repository.Store
	opts   EntitlementOptions
	audit  security.Recorder
	clock  Clock
	logger *slog.Logger
}

// NewEntitlementService constructs the role shop.
func NewEntitlementService(store repository.Store, opts EntitlementOptions, audit security.Recorder, clock Clock, logger *slog.Logger) EntitlementService {
	if opts.VIPCap <= 0 {
		opts.VIPCap = 20
	}
	if opts.GrantDays <= 0 {
		opts.GrantDays = 30
	}
	if opts.Prices == nil {
		opts.Prices = DefaultRolePrices
	}
	if audit == nil {
		audit = security.NopRecorder{}
	}
	return &entitlementService{store: store, opts: opts, audit: audit, clock: clock, logger: discardLogger(logger)}
}

func (s *entitlementService) Reconcile(ctx context.Context) error {
	return expireRoles(ctx, s.store.Users(), s.clock.now(), s.logger)
}

func (s *entitlementService) grant() time.Duration {
	return time.Duration(s.opts.GrantDays) * 24 * time.Hour
}

func (s *entitlementService) RoleInfo(ctx context.Context, userID string) (*RoleInfo, error) {
	now := s.clock.now()
	if err := expireRoles(ctx, s.store.Users(), now, s.logger); err != nil {
		return nil, err
	}
	user, err := findUser(ctx, s.store.Users(), userID)
	if err != nil {
		return nil, err
	}
	active, err := s.store.Users().CountActiveRole(ctx, repository.RoleVIPUser, now.Unix())
	if err != nil {
		return nil, err
	}
	slots := int64(s.opts.VIPCap) - active
	if slots < 0 {
		slots = 0
	}

	info := &RoleInfo{
		Role:          user.Role,
		RoleExpiresAt: user.RoleExpiresAt,
		Balance:       money.FromCents(user.BalanceCents),
		Upgrades:      []UpgradeOption{},
		VIPSlotsLeft:  slots,
		VIPCap:        s.opts.VIPCap,
	}
	if user.RoleExpiresAt != nil {
		if remaining := *user.RoleExpiresAt - now.Unix(); remaining > 0 {
			info.RemainingSeconds = remaining
		}
	}
	for _, role := range upgradePaths[user.Role] {
		price := s.opts.Prices[role]
		info.Upgrades = append(info.Upgrades, UpgradeOption{
			Role:         role,
			Price:        money.FromCents(price),
			DurationDays: s.opts.GrantDays,
			Affordable:   user.BalanceCents >= price,
		})
	}
	return info, nil
}

func upgradeAllowed(from, to repository.Role) bool {
	for _, candidate := range upgradePaths[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func (s *entitlementService) Upgrade(ctx context.Context, userID string, target repository.Role) (result *UpgradeResult, err error) {
	defer func() {
		telemetry.RoleUpgrades.WithLabelValues(string(target), telemetry.Outcome(err)).Inc()
	}()

	now := s.clock.now()
	if err := expireRoles(ctx, s.store.Users(), now, s.logger); err != nil {
		return nil, err
	}
	user, err := findUser(ctx, s.store.Users(), userID)
	if err != nil {
		return nil, err
	}
	if !upgradeAllowed(user.Role, target) {
		return nil, ErrUpgradeNotAllowed
	}
	price, ok := s.opts.Prices[target]
	if !ok {
		return nil, ErrUpgradeNotAllowed
	}
	selfExtend := user.Role == repository.RoleVIPUser && target == repository.RoleVIPUser

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		// 名额检查必须先于任何余额变动。
		if target == repository.RoleVIPUser && !selfExtend {
			active, err := tx.Users().CountActiveRole(ctx, repository.RoleVIPUser, now.Unix())
			if err != nil {
				return err
			}
			if active >= int64(s.opts.VIPCap) {
				return ErrVIPCapReached
			}
		}
		current, err := findUser(ctx, tx.Users(), userID)
		if err != nil {
			return err
		}
		if current.BalanceCents < price {
			return ErrRoleInsufficientBalance
		}

		start := now
		if current.Role == target && current.RoleExpiresAt != nil && *current.RoleExpiresAt > now.Unix() {
			start = time.Unix(*current.RoleExpiresAt, 0)
		}
		expiresAt := start.Add(s.grant()).Unix()

		balance, err := tx.Users().AdjustBalance(ctx, userID, -price, now.Unix())
		if err != nil {
			if errors.Is(err, repository.ErrStale) {
				return ErrRoleInsufficientBalance
			}
			return err
		}
		if err := tx.Users().SetRole(ctx, userID, target, &expiresAt, now.Unix()); err != nil {
			return err
		}
		if err := tx.UserLogs().Create(ctx, &repository.UserLog{
			ID:          newID(),
			ActorID:     userID,
			TargetID:    userID,
			Type:        repository.UserLogRolePurchase,
			AmountCents: price,
			Description: fmt.Sprintf("%s for %d days", target, s.opts.GrantDays),
			CreatedAt:   now.Unix(),
		}); err != nil {
			return err
		}
		result = &UpgradeResult{
			Role:          target,
			RoleExpiresAt: expiresAt,
			Balance:       money.FromCents(balance),
			Charged:       money.FromCents(price),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, security.Event{
		Kind:     security.KindRoleUpgrade,
		ActorID:  userID,
		Metadata: map[string]any{"role": string(target), "price_cents": price, "expires_at": result.RoleExpiresAt},
	})
	s.logger.InfoContext(ctx, "role upgraded", "user_id", userID, "role", target, "expires_at", result.RoleExpiresAt)
	return result, nil
}
