// 文件路径: internal/repository/sqlstore/user_log.go
// 模块说明: user_logs 表：余额与角色操作流水。
package sqlstore

import (
	"context"
	"fmt"

	"github.com/HardPulse/mazpan/internal/repository"
)

const userLogColumns = `id, actor_id, target_id, type, amount_cents, description, created_at`

type userLogRepo struct {
	q *querier
}

func (r *userLogRepo) Create(ctx context.Context, entry *repository.UserLog) error {
	_, err := r.q.exec(ctx, `INSERT INTO user_logs(`+userLogColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.ActorID, entry.TargetID, string(entry.Type), entry.AmountCents, entry.Description, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user log: %w", err)
	}
	return nil
}

func (r *userLogRepo) ListSince(ctx context.Context, since int64) ([]*repository.UserLog, error) {
	return r.list(ctx, `SELECT `+userLogColumns+` FROM user_logs WHERE created_at >= ? ORDER BY created_at, id`, since)
}

func (r *userLogRepo) ListByTarget(ctx context.Context, targetID string) ([]*repository.UserLog, error) {
	return r.list(ctx, `SELECT `+userLogColumns+` FROM user_logs WHERE target_id = ? ORDER BY created_at DESC, id`, targetID)
}

func (r *userLogRepo) list(ctx context.Context, query string, args ...any) ([]*repository.UserLog, error) {
	rows, err := r.q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*repository.UserLog
	for rows.Next() {
		var (
			entry repository.UserLog
			kind  string
		)
		if err := rows.Scan(&entry.ID, &entry.ActorID, &entry.TargetID, &kind, &entry.AmountCents, &entry.Description, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Type = repository.UserLogType(kind)
		list = append(list, &entry)
	}
	return list, rows.Err()
}
