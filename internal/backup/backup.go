// 文件路径: internal/backup/backup.go
// 模块说明: SQLite 数据库备份：VACUUM INTO 生成快照，可选 gzip 压缩、上传对象存储并清理旧文件。
package backup

import (
	"compress/gzip"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrUnsupportedDriver is returned for databases that cannot be snapshotted in-process.
var ErrUnsupportedDriver = errors.New("backup: only sqlite databases can be backed up in-process / 仅支持 SQLite 备份")

const filePrefix = "mazpan_"

// Uploader ships a finished backup file somewhere off-host.
type Uploader interface {
	Upload(ctx context.Context, name string, body io.ReadSeeker, size int64) (string, error)
}

// Options controls where and how backups are written.
type Options struct {
	Dir      string
	Driver   string
	Compress bool
	// Keep is the number of local backups to retain; zero keeps everything.
	Keep     int
	Uploader Uploader
	Now      func() time.Time
	Logger   *slog.Logger
}

// Result describes one finished backup.
type Result struct {
	Path     string
	Size     int64
	Location string
	Pruned   int
}

// Service writes database snapshots.
type Service struct {
	db   *sql.DB
	opts Options
}

// New validates options and returns a backup service.
func New(db *sql.DB, opts Options) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("backup: database handle is required / 数据库连接不能为空")
	}
	if opts.Driver != "" && opts.Driver != "sqlite" {
		return nil, ErrUnsupportedDriver
	}
	if strings.TrimSpace(opts.Dir) == "" {
		opts.Dir = "data/backups"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{db: db, opts: opts}, nil
}

// Run snapshots the database, optionally compresses and uploads it, then prunes old files.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	if err := os.MkdirAll(s.opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	name := filePrefix + s.opts.Now().UTC().Format("20060102_150405") + ".db"
	target := filepath.Join(s.opts.Dir, name)
	if err := s.snapshot(ctx, target); err != nil {
		return nil, err
	}

	if s.opts.Compress {
		compressed := target + ".gz"
		if err := compressFile(target, compressed); err != nil {
			_ = os.Remove(target)
			_ = os.Remove(compressed)
			return nil, err
		}
		_ = os.Remove(target)
		target = compressed
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("stat backup: %w", err)
	}
	result := &Result{Path: target, Size: info.Size()}

	if s.opts.Uploader != nil {
		location, err := s.upload(ctx, target, info.Size())
		if err != nil {
			return result, err
		}
		result.Location = location
	}

	pruned, err := s.prune()
	if err != nil {
		s.opts.Logger.WarnContext(ctx, "backup prune failed", "dir", s.opts.Dir, "error", err)
	}
	result.Pruned = pruned
	s.opts.Logger.InfoContext(ctx, "backup created", "path", result.Path, "size", result.Size, "location", result.Location, "pruned", pruned)
	return result, nil
}

func (s *Service) snapshot(ctx context.Context, target string) error {
	if _, err := os.Stat(target); err == nil {
		return fmt.Errorf("backup target %s already exists / 备份文件已存在", target)
	}
	quoted := strings.ReplaceAll(target, "'", "''")
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", quoted)); err != nil {
		return fmt.Errorf("sqlite vacuum into: %w", err)
	}
	return nil
}

func (s *Service) upload(ctx context.Context, path string, size int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	location, err := s.opts.Uploader.Upload(ctx, filepath.Base(path), f, size)
	if err != nil {
		return "", fmt.Errorf("upload backup: %w", err)
	}
	return location, nil
}

// prune removes the oldest local backups beyond Keep.
func (s *Service) prune() (int, error) {
	if s.opts.Keep <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(s.opts.Dir)
	if err != nil {
		return 0, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), filePrefix) {
			names = append(names, e.Name())
		}
	}
	if len(names) <= s.opts.Keep {
		return 0, nil
	}
	// 文件名带时间戳，字典序即时间序。
	sort.Strings(names)
	removed := 0
	for _, name := range names[:len(names)-s.opts.Keep] {
		if err := os.Remove(filepath.Join(s.opts.Dir, name)); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		return fmt.Errorf("compress backup: %w", err)
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("compress backup: %w", err)
	}
	return out.Close()
}
