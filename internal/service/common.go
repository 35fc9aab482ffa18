// 文件路径: internal/service/common.go
// 模块说明: 服务层公共类型、时钟与辅助函数。
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"

	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/support/hash"
	"github.com/HardPulse/mazpan/internal/support/money"
	"github.com/HardPulse/mazpan/internal/telemetry"
)

// MainFolderName is the protected per-user default folder.
const MainFolderName = "Main"

// DefaultCooldownHours applies to newly created folders.
const DefaultCooldownHours = 1

// Clock returns the current time; services take one so tests can pin it.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// Principal identifies the authenticated caller.
type Principal struct {
	ID       string
	Username string
	Role     repository.Role
	Language string
}

// UserView 是返回给客户端的用户快照。
type UserView struct {
	ID            string          `json:"user_id"`
	Username      string          `json:"username"`
	Status        repository.Role `json:"status"`
	RoleExpiresAt *int64          `json:"role_expires_at"`
	Balance       decimal.Decimal `json:"balance"`
	Language      string          `json:"language"`
	Approved      bool            `json:"approved"`
	Blocked       bool            `json:"blocked"`
	CreatedAt     int64           `json:"created_at"`
}

func newUserView(u *repository.User) UserView {
	return UserView{
		ID:            u.ID,
		Username:      u.Username,
		Status:        u.Role,
		RoleExpiresAt: u.RoleExpiresAt,
		Balance:       money.FromCents(u.BalanceCents),
		Language:      u.Language,
		Approved:      u.Approved,
		Blocked:       u.Blocked,
		CreatedAt:     u.CreatedAt,
	}
}

func newID() string {
	return uuid.NewString()
}

// expireRoles 是懒过期守卫：每次依赖角色的读取或决策前调用。
func expireRoles(ctx context.Context, users repository.UserRepository, now time.Time, logger *slog.Logger) error {
	n, err := users.ExpireRoles(ctx, now.Unix())
	if err != nil {
		return fmt.Errorf("expire roles: %w", err)
	}
	if n > 0 {
		telemetry.RolesExpired.Add(float64(n))
		if logger != nil {
			logger.InfoContext(ctx, "temporary roles expired", "count", n)
		}
	}
	return nil
}

// ensureMainFolder 返回用户的 Main 文件夹，不存在时创建（冷却 1 小时）。
func ensureMainFolder(ctx context.Context, folders repository.FolderRepository, userID string, now time.Time) (*repository.Folder, error) {
	folder, err := folders.FindByName(ctx, userID, MainFolderName)
	if err == nil {
		return folder, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	folder = &repository.Folder{
		ID:            newID(),
		UserID:        userID,
		Name:          MainFolderName,
		CooldownHours: DefaultCooldownHours,
		CreatedAt:     now.Unix(),
	}
	if err := folders.Create(ctx, folder); err != nil {
		return nil, fmt.Errorf("create main folder: %w", err)
	}
	return folder, nil
}

// findUser maps repository.ErrNotFound onto ErrUserNotFound.
func findUser(ctx context.Context, users repository.UserRepository, id string) (*repository.User, error) {
	user, err := users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

var textPolicy = bluemonday.StrictPolicy()

// sanitizeText 去除 HTML 标签，防止存储型 XSS。
func sanitizeText(s string) string {
	return textPolicy.Sanitize(s)
}

func discardLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.DiscardHandler)
}

// hashPassword maps the bcrypt length limit onto a validation error.
func hashPassword(h hash.Hasher, password string) (string, error) {
	hashed, err := h.Hash(password)
	if errors.Is(err, hash.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	return hashed, err
}
