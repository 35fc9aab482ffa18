// 文件路径: internal/repository/sqlstore/store.go
// 模块说明: database/sql 之上的 Store，按方言生成 SQL。
package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/HardPulse/mazpan/internal/repository"
)

// Store wires SQL-backed repository implementations for SQLite and PostgreSQL.
type Store struct {
	db      *sql.DB
	dialect Dialect
	q       *querier

	users      repository.UserRepository
	folders    repository.FolderRepository
	accounts   repository.AccountRepository
	categories repository.CategoryRepository
	products   repository.ProductRepository
	purchases  repository.PurchaseRepository
	userLogs   repository.UserLogRepository
	settings   repository.SettingRepository
}

var _ repository.Store = (*Store)(nil)

// NewStore constructs a repository store over db.
func NewStore(db *sql.DB, dialect Dialect) *Store {
	return newStore(db, dialect, db)
}

func newStore(db *sql.DB, dialect Dialect, conn DBTX) *Store {
	q := &querier{db: conn, dialect: dialect}
	return &Store{
		db:         db,
		dialect:    dialect,
		q:          q,
		users:      &userRepo{q: q},
		folders:    &folderRepo{q: q},
		accounts:   &accountRepo{q: q},
		categories: &categoryRepo{q: q},
		products:   &productRepo{q: q},
		purchases:  &purchaseRepo{q: q},
		userLogs:   &userLogRepo{q: q},
		settings:   &settingRepo{q: q},
	}
}

// DB exposes the underlying pool (used by health and status reporting).
func (s *Store) DB() *sql.DB { return s.db }

// Dialect reports the SQL dialect in use.
func (s *Store) Dialect() Dialect { return s.dialect }

func (s *Store) Users() repository.UserRepository          { return s.users }
func (s *Store) Folders() repository.FolderRepository      { return s.folders }
func (s *Store) Accounts() repository.AccountRepository    { return s.accounts }
func (s *Store) Categories() repository.CategoryRepository { return s.categories }
func (s *Store) Products() repository.ProductRepository    { return s.products }
func (s *Store) Purchases() repository.PurchaseRepository  { return s.purchases }
func (s *Store) UserLogs() repository.UserLogRepository    { return s.userLogs }
func (s *Store) Settings() repository.SettingRepository    { return s.settings }

// InTx runs fn inside one transaction. Nested calls reuse the outer transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if fn == nil {
		return errors.New("sqlstore: nil transaction func / 事务函数为空")
	}
	if _, nested := s.q.db.(*sql.Tx); nested {
		return fn(s)
	}
	return withTx(ctx, s.db, nil, func(ctx context.Context, tx DBTX) error {
		return fn(newStore(s.db, s.dialect, tx))
	})
}
