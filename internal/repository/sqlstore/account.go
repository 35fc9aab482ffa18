// 文件路径: internal/repository/sqlstore/account.go
// 模块说明: accounts 表：批量插入、按条件选取、移动与删除。
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/HardPulse/mazpan/internal/repository"
)

const accountColumns = `id, user_id, folder_id, uploaded_at, raw_data, format_type, email, email_password, login, account_password, geo, data1, data2`

// accountRepo 负责 accounts 表。
type accountRepo struct {
	q *querier
}

func (r *accountRepo) CreateBatch(ctx context.Context, records []*repository.AccountRecord) error {
	const stmt = `INSERT INTO accounts(` + accountColumns + `) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, rec := range records {
		if _, err := r.q.exec(ctx, stmt,
			rec.ID,
			rec.UserID,
			rec.FolderID,
			rec.UploadedAt,
			rec.RawData,
			rec.FormatType,
			rec.Email,
			rec.EmailPassword,
			rec.Login,
			rec.AccountPassword,
			optionalString(rec.Geo),
			rec.Data1,
			rec.Data2,
		); err != nil {
			return fmt.Errorf("insert account: %w", err)
		}
	}
	return nil
}

func (r *accountRepo) List(ctx context.Context, filter repository.AccountFilter) ([]*repository.AccountRecord, error) {
	conds := []string{"user_id = ?"}
	args := []any{filter.UserID}
	if filter.FolderID != "" {
		conds = append(conds, "folder_id = ?")
		args = append(args, filter.FolderID)
	}
	if filter.Geo != nil {
		conds = append(conds, "geo = ?")
		args = append(args, *filter.Geo)
	}
	if filter.IDs != nil {
		if len(filter.IDs) == 0 {
			return nil, nil
		}
		conds = append(conds, "id IN ("+placeholders(len(filter.IDs))+")")
		args = append(args, stringArgs(filter.IDs)...)
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY uploaded_at DESC, id`

	rows, err := r.q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*repository.AccountRecord
	for rows.Next() {
		var (
			rec repository.AccountRecord
			geo sql.NullString
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.FolderID,
			&rec.UploadedAt,
			&rec.RawData,
			&rec.FormatType,
			&rec.Email,
			&rec.EmailPassword,
			&rec.Login,
			&rec.AccountPassword,
			&geo,
			&rec.Data1,
			&rec.Data2,
		); err != nil {
			return nil, err
		}
		rec.Geo = nullableStringPtr(geo)
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (r *accountRepo) Move(ctx context.Context, userID string, ids []string, folderID string) (int64, error) {
	// 只移动属于该用户的记录，其它 ID 静默忽略。
	if len(ids) == 0 {
		return 0, nil
	}
	args := append([]any{folderID, userID}, stringArgs(ids)...)
	res, err := r.q.exec(ctx,
		`UPDATE accounts SET folder_id = ? WHERE user_id = ? AND id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *accountRepo) MoveFolder(ctx context.Context, fromFolderID, toFolderID string) (int64, error) {
	res, err := r.q.exec(ctx, `UPDATE accounts SET folder_id = ? WHERE folder_id = ?`, toFolderID, fromFolderID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *accountRepo) Delete(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := append([]any{userID}, stringArgs(ids)...)
	res, err := r.q.exec(ctx,
		`DELETE FROM accounts WHERE user_id = ? AND id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *accountRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.q.exec(ctx, `DELETE FROM accounts WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *accountRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.q.queryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count)
	return count, err
}
