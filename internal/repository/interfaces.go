// 文件路径: internal/repository/interfaces.go
// 模块说明: 各仓储接口与事务化 Store。
package repository

import "context"

// Store 聚合所有仓储接口，业务层通过它访问数据。
type Store interface {
	Users() UserRepository
	Folders() FolderRepository
	Accounts() AccountRepository
	Categories() CategoryRepository
	Products() ProductRepository
	Purchases() PurchaseRepository
	UserLogs() UserLogRepository
	Settings() SettingRepository

	// InTx runs fn against a store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(tx Store) error) error
}

// UserRepository abstracts persistence for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]*User, error)
	// Update 写回 username/password/role/过期时间/审批/封禁/语言字段，不修改余额。
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error

	// AdjustBalance applies delta only when the result stays non-negative and
	// returns the new balance. ErrStale reports a rejected debit.
	AdjustBalance(ctx context.Context, id string, deltaCents int64, now int64) (int64, error)
	SetBalance(ctx context.Context, id string, cents int64, now int64) error
	// SetRole writes role and expiry only; expiresAt nil means permanent.
	SetRole(ctx context.Context, id string, role Role, expiresAt *int64, now int64) error

	// ExpireRoles downgrades every temporary role whose expiry is before now.
	ExpireRoles(ctx context.Context, now int64) (int64, error)
	// CountActiveRole counts holders of role whose expiry lies after now.
	CountActiveRole(ctx context.Context, role Role, now int64) (int64, error)
	CountByRole(ctx context.Context) ([]RoleCount, error)
}

// FolderRepository 管理 folders 表。
type FolderRepository interface {
	Create(ctx context.Context, folder *Folder) error
	FindByID(ctx context.Context, id string) (*Folder, error)
	FindByName(ctx context.Context, userID, name string) (*Folder, error)
	ListByUser(ctx context.Context, userID string) ([]*Folder, error)
	UpdateCooldown(ctx context.Context, id string, hours int) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// AccountRepository 管理 accounts 表。
type AccountRepository interface {
	CreateBatch(ctx context.Context, records []*AccountRecord) error
	List(ctx context.Context, filter AccountFilter) ([]*AccountRecord, error)
	Move(ctx context.Context, userID string, ids []string, folderID string) (int64, error)
	MoveFolder(ctx context.Context, fromFolderID, toFolderID string) (int64, error)
	Delete(ctx context.Context, userID string, ids []string) (int64, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// CategoryRepository 管理商品分类。
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	FindByID(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	Delete(ctx context.Context, id string) error
}

// ProductRepository 管理商品。
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*Product, error)
	// Update rewrites the whole row.
	Update(ctx context.Context, product *Product) error
	// UpdateStock writes content and counters only when available_quantity
	// still equals expectedAvailable; otherwise it returns ErrStale.
	UpdateStock(ctx context.Context, product *Product, expectedAvailable int64) error
	Delete(ctx context.Context, id string) error
	DeleteByCategory(ctx context.Context, categoryID string) (int64, error)
}

// PurchaseRepository 管理购买记录（只追加）。
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *Purchase) error
	ListByUser(ctx context.Context, userID string) ([]*Purchase, error)
	SummarizeSince(ctx context.Context, since int64) ([]PurchaseSummary, error)
	CountBuyersSince(ctx context.Context, since int64) (int64, error)
}

// UserLogRepository 管理审计日志（只追加）。
type UserLogRepository interface {
	Create(ctx context.Context, entry *UserLog) error
	ListSince(ctx context.Context, since int64) ([]*UserLog, error)
	ListByTarget(ctx context.Context, targetID string) ([]*UserLog, error)
}

// SettingRepository abstracts key/value settings.
type SettingRepository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	Upsert(ctx context.Context, setting *Setting) error
}
