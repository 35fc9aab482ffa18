// 文件路径: internal/repository/sqlstore/category.go
// 模块说明: shop_categories 表。
package sqlstore

import (
	"context"
	"fmt"

	"github.com/HardPulse/mazpan/internal/repository"
)

type categoryRepo struct {
	q *querier
}

func (r *categoryRepo) Create(ctx context.Context, c *repository.Category) error {
	_, err := r.q.exec(ctx, `INSERT INTO categories(id, name, description, created_at) VALUES(?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert category: %w", duplicate(err))
	}
	return nil
}

func (r *categoryRepo) FindByID(ctx context.Context, id string) (*repository.Category, error) {
	var c repository.Category
	err := r.q.queryRow(ctx, `SELECT id, name, description, created_at FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *categoryRepo) List(ctx context.Context) ([]*repository.Category, error) {
	rows, err := r.q.query(ctx, `SELECT id, name, description, created_at FROM categories ORDER BY name, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*repository.Category
	for rows.Next() {
		var c repository.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.exec(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}
