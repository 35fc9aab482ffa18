// 文件路径: internal/service/admin_user.go
// 模块说明: 管理员/客服对用户执行的操作：审核、封禁、改角色、改余额、删除与编辑。
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/security"
	"github.com/HardPulse/mazpan/internal/support/hash"
	"github.com/HardPulse/mazpan/internal/support/i18n"
	"github.com/HardPulse/mazpan/internal/support/money"
	"github.com/HardPulse/mazpan/internal/telemetry"
)

// Admin actions understood by AdminUserService.Apply.
const (
	ActionApprove       = "approve"
	ActionReject        = "reject"
	ActionBlock         = "block"
	ActionUnblock       = "unblock"
	ActionChangeStatus  = "change_status"
	ActionSetRole       = "set_role"
	ActionChangeBalance = "change_balance"
	ActionSetBalance    = "set_balance"
	ActionAddBalance    = "add_balance"
	ActionDelete        = "delete"
)

// AdminUserService is the staff-facing user management surface.
type AdminUserService interface {
	ListPending(ctx context.Context, actor Principal) ([]UserView, error)
	ListUsers(ctx context.Context, actor Principal) ([]UserView, error)
	Apply(ctx context.Context, actor Principal, input ActionInput) (*UserView, error)
	Delete(ctx context.Context, actor Principal, userID string) error
	Edit(ctx context.Context, actor Principal, userID string, input EditUserInput) (*UserView, error)
}

// FlexValue accepts either a JSON string or a JSON number.
type FlexValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *FlexValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FlexValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = FlexValue(n.String())
	return nil
}

// ActionInput 是 user-action 的请求体。Value 对角色操作是角色名，对余额操作是金额。
type ActionInput struct {
	UserID string    `json:"user_id"`
	Action string    `json:"action"`
	Value  FlexValue `json:"value"`
	Days   *int      `json:"days"`
}

// EditUserInput changes a user's profile fields.
type EditUserInput struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Language *string `json:"language"`
}

type adminUserService struct {
	store       repository.Store
	hasher      hash.Hasher
	languages   LanguageSet
	minPassword int
	audit       security.Recorder
	clock       Clock
	logger      *slog.Logger
}

// NewAdminUserService 构造后台用户管理服务。
func NewAdminUserService(store repository.Store, hasher hash.Hasher, languages LanguageSet, minPassword int, audit security.Recorder, clock Clock, logger *slog.Logger) AdminUserService {
	if audit == nil {
		audit = security.NopRecorder{}
	}
	if minPassword <= 0 {
		minPassword = 6
	}
	return &adminUserService{
		store:       store,
		hasher:      hasher,
		languages:   languages,
		minPassword: minPassword,
		audit:       audit,
		clock:       clock,
		logger:      discardLogger(logger),
	}
}

func visibleFilter(actor Principal) repository.UserFilter {
	if actor.Role == repository.RoleAdmin {
		return repository.UserFilter{}
	}
	return repository.UserFilter{ExcludeRoles: []repository.Role{repository.RoleAdmin}}
}

func (s *adminUserService) list(ctx context.Context, filter repository.UserFilter) ([]UserView, error) {
	if err := expireRoles(ctx, s.store.Users(), s.clock.now(), s.logger); err != nil {
		return nil, err
	}
	users, err := s.store.Users().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, newUserView(u))
	}
	return views, nil
}

func (s *adminUserService) ListPending(ctx context.Context, actor Principal) ([]UserView, error) {
	if !actor.Role.Staff() {
		return nil, ErrForbidden
	}
	pending := false
	filter := visibleFilter(actor)
	filter.Approved = &pending
	return s.list(ctx, filter)
}

func (s *adminUserService) ListUsers(ctx context.Context, actor Principal) ([]UserView, error) {
	if !actor.Role.Staff() {
		return nil, ErrForbidden
	}
	return s.list(ctx, visibleFilter(actor))
}

// authorize 检查 actor 能否对 target 执行 action。
func authorize(actor Principal, target *repository.User, action string) error {
	if !actor.Role.Staff() {
		return ErrForbidden
	}
	self := actor.ID == target.ID
	if actor.Role == repository.RoleSupport {
		if self {
			return ErrSelfAction
		}
		if target.Role.Staff() {
			return ErrTargetProtected
		}
		return nil
	}
	if self {
		switch action {
		case ActionDelete, ActionReject, ActionBlock, ActionChangeStatus, ActionSetRole:
			return ErrSelfAction
		}
	}
	return nil
}

func (s *adminUserService) Apply(ctx context.Context, actor Principal, input ActionInput) (view *UserView, err error) {
	action := strings.ToLower(strings.TrimSpace(input.Action))
	defer func() {
		telemetry.AdminActions.WithLabelValues(action, telemetry.Outcome(err)).Inc()
	}()

	now := s.clock.now()
	if err := expireRoles(ctx, s.store.Users(), now, s.logger); err != nil {
		return nil, err
	}
	target, err := findUser(ctx, s.store.Users(), input.UserID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, target, action); err != nil {
		return nil, err
	}

	switch action {
	case ActionApprove:
		err = s.store.InTx(ctx, func(tx repository.Store) error {
			target.Approved = true
			target.UpdatedAt = now.Unix()
			if err := tx.Users().Update(ctx, target); err != nil {
				return err
			}
			_, err := ensureMainFolder(ctx, tx.Folders(), target.ID, now)
			return err
		})
	case ActionReject:
		if target.Approved {
			return nil, ErrNotPending
		}
		err = s.removeUser(ctx, target.ID)
	case ActionBlock, ActionUnblock:
		target.Blocked = action == ActionBlock
		target.UpdatedAt = now.Unix()
		err = s.store.Users().Update(ctx, target)
	case ActionChangeStatus, ActionSetRole:
		err = s.setRole(ctx, actor, target, repository.Role(strings.TrimSpace(string(input.Value))), input.Days, now)
	case ActionChangeBalance, ActionSetBalance:
		err = s.setBalance(ctx, actor, target, string(input.Value), now)
	case ActionAddBalance:
		err = s.addBalance(ctx, actor, target, string(input.Value), now)
	case ActionDelete:
		err = s.removeUser(ctx, target.ID)
	default:
		return nil, ErrActionInvalid
	}
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, security.Event{
		Kind:     security.KindAdminAction,
		ActorID:  actor.ID,
		TargetID: target.ID,
		Metadata: map[string]any{"action": action, "value": string(input.Value)},
	})
	s.logger.InfoContext(ctx, "admin action applied", "actor_id", actor.ID, "target_id", target.ID, "action", action)

	if action == ActionReject || action == ActionDelete {
		return nil, nil
	}
	updated, err := findUser(ctx, s.store.Users(), target.ID)
	if err != nil {
		return nil, err
	}
	result := newUserView(updated)
	return &result, nil
}

func (s *adminUserService) setRole(ctx context.Context, actor Principal, target *repository.User, role repository.Role, days *int, now time.Time) error {
	if !role.Valid() {
		return ErrRoleInvalid
	}
	if role.Staff() && actor.Role != repository.RoleAdmin {
		return ErrRoleForbidden
	}
	var expiresAt *int64
	description := string(role)
	if role.Temporary() {
		if days == nil || *days < 0 {
			return ErrDaysInvalid
		}
		d := *days
		if d == 0 {
			role = repository.RoleUser
			description = fmt.Sprintf("%s cleared", target.Role)
		} else {
			at := now.AddDate(0, 0, d).Unix()
			expiresAt = &at
			description = fmt.Sprintf("%s for %d days", role, d)
		}
	}
	return s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().SetRole(ctx, target.ID, role, expiresAt, now.Unix()); err != nil {
			return err
		}
		return tx.UserLogs().Create(ctx, &repository.UserLog{
			ID:          newID(),
			ActorID:     actor.ID,
			TargetID:    target.ID,
			Type:        repository.UserLogAdminRoleSet,
			Description: description,
			CreatedAt:   now.Unix(),
		})
	})
}

func parseAmount(value string) (int64, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0, newError(ErrValidation, "error.validation", fmt.Sprintf("service: invalid amount %q / 金额格式错误", value))
	}
	return money.ToCents(amount), nil
}

func (s *adminUserService) setBalance(ctx context.Context, actor Principal, target *repository.User, value string, now time.Time) error {
	cents, err := parseAmount(value)
	if err != nil {
		return err
	}
	if cents < 0 {
		return ErrBalanceNegative
	}
	return s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().SetBalance(ctx, target.ID, cents, now.Unix()); err != nil {
			return err
		}
		return tx.UserLogs().Create(ctx, &repository.UserLog{
			ID:          newID(),
			ActorID:     actor.ID,
			TargetID:    target.ID,
			Type:        repository.UserLogAdminBalanceSet,
			AmountCents: cents,
			Description: fmt.Sprintf("balance set to %s", money.FromCents(cents).StringFixed(2)),
			CreatedAt:   now.Unix(),
		})
	})
}

func (s *adminUserService) addBalance(ctx context.Context, actor Principal, target *repository.User, value string, now time.Time) error {
	delta, err := parseAmount(value)
	if err != nil {
		return err
	}
	return s.store.InTx(ctx, func(tx repository.Store) error {
		balance, err := tx.Users().AdjustBalance(ctx, target.ID, delta, now.Unix())
		if err != nil {
			if errors.Is(err, repository.ErrStale) {
				return ErrBalanceNegative
			}
			return err
		}
		return tx.UserLogs().Create(ctx, &repository.UserLog{
			ID:          newID(),
			ActorID:     actor.ID,
			TargetID:    target.ID,
			Type:        repository.UserLogAdminBalanceAdd,
			AmountCents: delta,
			Description: fmt.Sprintf("balance %+d cents, now %s", delta, money.FromCents(balance).StringFixed(2)),
			CreatedAt:   now.Unix(),
		})
	})
}

// removeUser deletes records, folders and the user in one transaction.
func (s *adminUserService) removeUser(ctx context.Context, userID string) error {
	return s.store.InTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Accounts().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if _, err := tx.Folders().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Users().Delete(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		return nil
	})
}

func (s *adminUserService) Delete(ctx context.Context, actor Principal, userID string) error {
	target, err := findUser(ctx, s.store.Users(), userID)
	if err != nil {
		return err
	}
	if err := authorize(actor, target, ActionDelete); err != nil {
		return err
	}
	if err := s.removeUser(ctx, target.ID); err != nil {
		return err
	}
	s.audit.Record(ctx, security.Event{Kind: security.KindAdminDelete, ActorID: actor.ID, TargetID: target.ID})
	s.logger.InfoContext(ctx, "user deleted", "actor_id", actor.ID, "target_id", target.ID)
	return nil
}

func (s *adminUserService) Edit(ctx context.Context, actor Principal, userID string, input EditUserInput) (*UserView, error) {
	target, err := findUser(ctx, s.store.Users(), userID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, target, "edit"); err != nil {
		return nil, err
	}
	if input.Username != nil {
		name := strings.TrimSpace(*input.Username)
		if n := utf8.RuneCountInString(name); n < usernameMinRunes || n > usernameMaxRunes {
			return nil, ErrUsernameInvalid
		}
		target.Username = name
	}
	if input.Password != nil && *input.Password != "" {
		if utf8.RuneCountInString(*input.Password) < s.minPassword {
			return nil, ErrPasswordTooShort
		}
		hashed, err := hashPassword(s.hasher, *input.Password)
		if err != nil {
			return nil, err
		}
		target.Password = hashed
	}
	if input.Language != nil {
		lang := i18n.Normalize(*input.Language)
		if lang == "" || (s.languages != nil && !s.languages.Supported(lang)) {
			return nil, ErrLanguageUnsupported
		}
		target.Language = lang
	}
	target.UpdatedAt = s.clock.now().Unix()
	if err := s.store.Users().Update(ctx, target); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}
	s.audit.Record(ctx, security.Event{Kind: security.KindAdminEdit, ActorID: actor.ID, TargetID: target.ID})
	view := newUserView(target)
	return &view, nil
}
