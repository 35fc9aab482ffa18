// 文件路径: internal/repository/sqlstore/user.go
// 模块说明: users 表：注册、审批、角色与余额变更。
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/HardPulse/mazpan/internal/repository"
)

const userColumns = `id, username, password, role, role_expires_at, balance, approved, blocked, language, created_at, updated_at`

// userRepo 负责 users 表。
type userRepo struct {
	q *querier
}

func (r *userRepo) Create(ctx context.Context, user *repository.User) error {
	const stmt = `INSERT INTO users(` + userColumns + `) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.exec(ctx, stmt,
		user.ID,
		user.Username,
		user.Password,
		string(user.Role),
		optionalInt64(user.RoleExpiresAt),
		user.BalanceCents,
		boolToInt(user.Approved),
		boolToInt(user.Blocked),
		user.Language,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", duplicate(err))
	}
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*repository.User, error) {
	// 按 ID 查询用户。
	return scanUser(r.q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*repository.User, error) {
	// 按用户名查询用户。
	return scanUser(r.q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *userRepo) List(ctx context.Context, filter repository.UserFilter) ([]*repository.User, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Approved != nil {
		conds = append(conds, "approved = ?")
		args = append(args, boolToInt(*filter.Approved))
	}
	if len(filter.ExcludeRoles) > 0 {
		conds = append(conds, "role NOT IN ("+placeholders(len(filter.ExcludeRoles))+")")
		for _, role := range filter.ExcludeRoles {
			args = append(args, string(role))
		}
	}
	query := `SELECT ` + userColumns + ` FROM users`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, username"

	rows, err := r.q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*repository.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepo) Update(ctx context.Context, user *repository.User) error {
	const stmt = `UPDATE users SET username = ?, password = ?, role = ?, role_expires_at = ?,
		approved = ?, blocked = ?, language = ?, updated_at = ? WHERE id = ?`
	res, err := r.q.exec(ctx, stmt,
		user.Username,
		user.Password,
		string(user.Role),
		optionalInt64(user.RoleExpiresAt),
		boolToInt(user.Approved),
		boolToInt(user.Blocked),
		user.Language,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", duplicate(err))
	}
	return affectedOrNotFound(res)
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *userRepo) AdjustBalance(ctx context.Context, id string, deltaCents int64, now int64) (int64, error) {
	// 条件更新：余额不足时不写入。
	res, err := r.q.exec(ctx,
		`UPDATE users SET balance = balance + ?, updated_at = ? WHERE id = ? AND balance + ? >= 0`,
		deltaCents, now, id, deltaCents)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	var balance int64
	if err := r.q.queryRow(ctx, `SELECT balance FROM users WHERE id = ?`, id).Scan(&balance); err != nil {
		return 0, notFound(err)
	}
	if affected == 0 {
		return balance, repository.ErrStale
	}
	return balance, nil
}

func (r *userRepo) SetBalance(ctx context.Context, id string, cents int64, now int64) error {
	res, err := r.q.exec(ctx, `UPDATE users SET balance = ?, updated_at = ? WHERE id = ?`, cents, now, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *userRepo) SetRole(ctx context.Context, id string, role repository.Role, expiresAt *int64, now int64) error {
	res, err := r.q.exec(ctx, `UPDATE users SET role = ?, role_expires_at = ?, updated_at = ? WHERE id = ?`,
		string(role), optionalInt64(expiresAt), now, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *userRepo) ExpireRoles(ctx context.Context, now int64) (int64, error) {
	// 一条语句完成所有过期临时角色的降级。
	res, err := r.q.exec(ctx,
		`UPDATE users SET role = ?, role_expires_at = NULL, updated_at = ?
		 WHERE role IN (?, ?) AND role_expires_at IS NOT NULL AND role_expires_at < ?`,
		string(repository.RoleUser), now, string(repository.RoleSuperUser), string(repository.RoleVIPUser), now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *userRepo) CountActiveRole(ctx context.Context, role repository.Role, now int64) (int64, error) {
	var count int64
	err := r.q.queryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = ? AND role_expires_at IS NOT NULL AND role_expires_at > ?`,
		string(role), now).Scan(&count)
	return count, err
}

func (r *userRepo) CountByRole(ctx context.Context) ([]repository.RoleCount, error) {
	rows, err := r.q.query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role ORDER BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []repository.RoleCount
	for rows.Next() {
		var (
			role  string
			count int64
		)
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		counts = append(counts, repository.RoleCount{Role: repository.Role(role), Count: count})
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*repository.User, error) {
	var (
		user     repository.User
		role     string
		expires  sql.NullInt64
		approved int
		blocked  int
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Password,
		&role,
		&expires,
		&user.BalanceCents,
		&approved,
		&blocked,
		&user.Language,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	user.Role = repository.Role(role)
	user.RoleExpiresAt = nullableIntPtr(expires)
	user.Approved = approved == 1
	user.Blocked = blocked == 1
	return &user, nil
}
