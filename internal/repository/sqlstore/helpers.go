// 文件路径: internal/repository/sqlstore/helpers.go
// 模块说明: 布尔与可空列的转换辅助。
package sqlstore

import (
	"database/sql"
	"errors"

	"github.com/HardPulse/mazpan/internal/repository"
)

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func optionalInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func optionalString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableIntPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	value := v.Int64
	return &value
}

func nullableStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	value := v.String
	return &value
}

// notFound 把 sql.ErrNoRows 转成仓储层的 ErrNotFound。
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

// duplicate 把唯一约束冲突转成 ErrDuplicate。
func duplicate(err error) error {
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func stringArgs(values []string) []any {
	args := make([]any, 0, len(values))
	for _, v := range values {
		args = append(args, v)
	}
	return args
}
