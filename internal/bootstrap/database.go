// 文件路径: internal/bootstrap/database.go
// 模块说明: 按驱动打开数据库并带退避地等待可用。
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/HardPulse/mazpan/internal/config"
	"github.com/HardPulse/mazpan/internal/repository/sqlstore"
)

// OpenDatabase opens the configured driver and waits for it to answer a ping.
func OpenDatabase(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*sql.DB, sqlstore.Dialect, error) {
	dialect, err := sqlstore.ParseDialect(cfg.Driver)
	if err != nil {
		return nil, "", err
	}

	var db *sql.DB
	switch dialect {
	case sqlstore.DialectPostgres:
		db, err = OpenPostgres(cfg.DSN)
	default:
		db, err = OpenSQLite(cfg.Path)
	}
	if err != nil {
		return nil, "", err
	}

	if err := pingWithRetry(ctx, db, cfg.ConnectTimeout, logger); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("ping %s: %w", dialect, err)
	}
	return db, dialect, nil
}

// OpenSQLite ensures the parent directory exists, then opens a SQLite connection with sane pragmas.
func OpenSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("SQLite 路径不能为空 / SQLite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return db, nil
}

// OpenPostgres opens a pgx-backed pool from a URL or keyword DSN.
func OpenPostgres(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("PostgreSQL DSN 不能为空 / database.dsn is required for postgres")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// pingWithRetry 以指数退避重试 Ping，直到成功或超时。
func pingWithRetry(ctx context.Context, db *sql.DB, timeout time.Duration, logger *slog.Logger) error {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	policy.MaxElapsedTime = timeout

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := db.PingContext(ctx)
		if err != nil && logger != nil {
			logger.Warn("database not ready", "attempt", attempt, "error", err)
		}
		return err
	}, backoff.WithContext(policy, ctx))
}
