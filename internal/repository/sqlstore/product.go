// 文件路径: internal/repository/sqlstore/product.go
// 模块说明: shop_products 表：库存型与唯一商品。
package sqlstore

import (
	"context"
	"fmt"

	"github.com/HardPulse/mazpan/internal/repository"
)

const productColumns = `id, category_id, title, description, price_cents, type, content, is_unique,
	original_quantity, available_quantity, sold_quantity, created_at, updated_at`

type productRepo struct {
	q *querier
}

func (r *productRepo) Create(ctx context.Context, p *repository.Product) error {
	const stmt = `INSERT INTO products(` + productColumns + `) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.exec(ctx, stmt,
		p.ID,
		p.CategoryID,
		p.Title,
		p.Description,
		p.PriceCents,
		string(p.Type),
		p.Content,
		boolToInt(p.Unique),
		p.OriginalQuantity,
		p.AvailableQuantity,
		p.SoldQuantity,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", duplicate(err))
	}
	return nil
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*repository.Product, error) {
	return scanProduct(r.q.queryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id))
}

func (r *productRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*repository.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if filter.CategoryID != "" {
		query += ` WHERE category_id = ?`
		args = append(args, filter.CategoryID)
	}
	query += ` ORDER BY created_at, title`

	rows, err := r.q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*repository.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *productRepo) Update(ctx context.Context, p *repository.Product) error {
	const stmt = `UPDATE products SET category_id = ?, title = ?, description = ?, price_cents = ?, type = ?,
		content = ?, is_unique = ?, original_quantity = ?, available_quantity = ?, sold_quantity = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.q.exec(ctx, stmt,
		p.CategoryID,
		p.Title,
		p.Description,
		p.PriceCents,
		string(p.Type),
		p.Content,
		boolToInt(p.Unique),
		p.OriginalQuantity,
		p.AvailableQuantity,
		p.SoldQuantity,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *productRepo) UpdateStock(ctx context.Context, p *repository.Product, expectedAvailable int64) error {
	// 以 available_quantity 作为版本号做比较并交换，避免超卖。
	res, err := r.q.exec(ctx,
		`UPDATE products SET content = ?, available_quantity = ?, sold_quantity = ?, updated_at = ?
		 WHERE id = ? AND available_quantity = ?`,
		p.Content, p.AvailableQuantity, p.SoldQuantity, p.UpdatedAt, p.ID, expectedAvailable)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrStale
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.exec(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *productRepo) DeleteByCategory(ctx context.Context, categoryID string) (int64, error) {
	res, err := r.q.exec(ctx, `DELETE FROM products WHERE category_id = ?`, categoryID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanProduct(row rowScanner) (*repository.Product, error) {
	var (
		p        repository.Product
		kind     string
		isUnique int
	)
	if err := row.Scan(
		&p.ID,
		&p.CategoryID,
		&p.Title,
		&p.Description,
		&p.PriceCents,
		&kind,
		&p.Content,
		&isUnique,
		&p.OriginalQuantity,
		&p.AvailableQuantity,
		&p.SoldQuantity,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	p.Type = repository.ProductType(kind)
	p.Unique = isUnique == 1
	return &p, nil
}
