// 文件路径: internal/migrations/runner.go
// 模块说明: goose 迁移执行器。
package migrations

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

// setup 选择 goose 方言与迁移目录；dialect 取值 sqlite 或 postgres。
func setup(dialect string) (string, error) {
	goose.SetBaseFS(Files)
	switch dialect {
	case "", "sqlite":
		return "sqlite", goose.SetDialect("sqlite3")
	case "postgres":
		return "postgres", goose.SetDialect("postgres")
	default:
		return "", fmt.Errorf("migrations: unsupported dialect %q / 不支持的迁移方言", dialect)
	}
}

// Up migrates the schema to the latest version.
func Up(db *sql.DB, dialect string) error {
	dir, err := setup(dialect)
	if err != nil {
		return err
	}
	return goose.Up(db, dir)
}

// Down rolls back a single migration.
func Down(db *sql.DB, dialect string) error {
	dir, err := setup(dialect)
	if err != nil {
		return err
	}
	return goose.Down(db, dir)
}

// Status prints migration status.
func Status(db *sql.DB, dialect string) error {
	dir, err := setup(dialect)
	if err != nil {
		return err
	}
	return goose.Status(db, dir)
}
