// 文件路径: internal/repository/sqlstore/folder.go
// 模块说明: folders 表，含 Main 文件夹。
package sqlstore

import (
	"context"
	"fmt"

	"github.com/HardPulse/mazpan/internal/repository"
)

const folderColumns = `id, user_id, name, cooldown_hours, created_at`

type folderRepo struct {
	q *querier
}

func (r *folderRepo) Create(ctx context.Context, folder *repository.Folder) error {
	_, err := r.q.exec(ctx, `INSERT INTO folders(`+folderColumns+`) VALUES(?, ?, ?, ?, ?)`,
		folder.ID, folder.UserID, folder.Name, folder.CooldownHours, folder.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert folder: %w", duplicate(err))
	}
	return nil
}

func (r *folderRepo) FindByID(ctx context.Context, id string) (*repository.Folder, error) {
	return scanFolder(r.q.queryRow(ctx, `SELECT `+folderColumns+` FROM folders WHERE id = ?`, id))
}

func (r *folderRepo) FindByName(ctx context.Context, userID, name string) (*repository.Folder, error) {
	return scanFolder(r.q.queryRow(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE user_id = ? AND name = ? ORDER BY created_at LIMIT 1`, userID, name))
}

func (r *folderRepo) ListByUser(ctx context.Context, userID string) ([]*repository.Folder, error) {
	rows, err := r.q.query(ctx, `SELECT `+folderColumns+` FROM folders WHERE user_id = ? ORDER BY created_at, name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []*repository.Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, folder)
	}
	return folders, rows.Err()
}

func (r *folderRepo) UpdateCooldown(ctx context.Context, id string, hours int) error {
	res, err := r.q.exec(ctx, `UPDATE folders SET cooldown_hours = ? WHERE id = ?`, hours, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *folderRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.exec(ctx, `DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *folderRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.q.exec(ctx, `DELETE FROM folders WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanFolder(row rowScanner) (*repository.Folder, error) {
	var folder repository.Folder
	if err := row.Scan(&folder.ID, &folder.UserID, &folder.Name, &folder.CooldownHours, &folder.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &folder, nil
}
