// 文件路径: internal/repository/sqlstore/purchase.go
// 模块说明: purchases 表与当日销售汇总。
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/HardPulse/mazpan/internal/repository"
)

const purchaseColumns = `id, buyer_id, product_id, product_title, quantity, unit_price, total, content, min_age_hours, created_at`

type purchaseRepo struct {
	q *querier
}

func (r *purchaseRepo) Create(ctx context.Context, p *repository.Purchase) error {
	_, err := r.q.exec(ctx, `INSERT INTO purchases(`+purchaseColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.UserID,
		p.ProductID,
		p.ProductTitle,
		p.Quantity,
		p.UnitPriceCents,
		p.TotalCents,
		p.Content,
		optionalInt64(p.MinAgeHours),
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

func (r *purchaseRepo) ListByUser(ctx context.Context, userID string) ([]*repository.Purchase, error) {
	rows, err := r.q.query(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE buyer_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*repository.Purchase
	for rows.Next() {
		var (
			p      repository.Purchase
			minAge sql.NullInt64
		)
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.ProductID,
			&p.ProductTitle,
			&p.Quantity,
			&p.UnitPriceCents,
			&p.TotalCents,
			&p.Content,
			&minAge,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		p.MinAgeHours = nullableIntPtr(minAge)
		list = append(list, &p)
	}
	return list, rows.Err()
}

func (r *purchaseRepo) SummarizeSince(ctx context.Context, since int64) ([]repository.PurchaseSummary, error) {
	// 按商品聚合销量与营收。
	const query = `SELECT product_id, product_title, COUNT(*),
		CAST(COALESCE(SUM(quantity), 0) AS BIGINT),
		CAST(COALESCE(SUM(total), 0) AS BIGINT)
		FROM purchases WHERE created_at >= ?
		GROUP BY product_id, product_title
		ORDER BY 5 DESC, product_title`
	rows, err := r.q.query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []repository.PurchaseSummary
	for rows.Next() {
		var s repository.PurchaseSummary
		if err := rows.Scan(&s.ProductID, &s.ProductTitle, &s.Purchases, &s.Units, &s.RevenueCents); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *purchaseRepo) CountBuyersSince(ctx context.Context, since int64) (int64, error) {
	var count int64
	err := r.q.queryRow(ctx, `SELECT COUNT(DISTINCT buyer_id) FROM purchases WHERE created_at >= ?`, since).Scan(&count)
	return count, err
}
