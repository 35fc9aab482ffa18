// 文件路径: internal/repository/sqlstore/setting.go
// 模块说明: settings 键值表。
package sqlstore

import (
	"context"

	"github.com/HardPulse/mazpan/internal/repository"
)

type settingRepo struct {
	q *querier
}

func (r *settingRepo) Get(ctx context.Context, key string) (*repository.Setting, error) {
	const query = `SELECT key, value, category, updated_at FROM settings WHERE key = ?`
	var s repository.Setting
	if err := r.q.queryRow(ctx, query, key).Scan(&s.Key, &s.Value, &s.Category, &s.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *settingRepo) Upsert(ctx context.Context, setting *repository.Setting) error {
	const stmt = `INSERT INTO settings(key, value, category, updated_at) VALUES(?, ?, ?, ?)
                  ON CONFLICT(key) DO UPDATE SET value = excluded.value, category = excluded.category, updated_at = excluded.updated_at`
	_, err := r.q.exec(ctx, stmt, setting.Key, setting.Value, setting.Category, setting.UpdatedAt)
	return err
}
