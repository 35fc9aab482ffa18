// 文件路径: cmd/mazpan/app.go
// 模块说明: 命令共用的装配逻辑：读取配置、打开数据库、构造服务。
package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/HardPulse/mazpan/internal/api"
	"github.com/HardPulse/mazpan/internal/backup"
	"github.com/HardPulse/mazpan/internal/bootstrap"
	"github.com/HardPulse/mazpan/internal/config"
	"github.com/HardPulse/mazpan/internal/migrations"
	"github.com/HardPulse/mazpan/internal/repository/sqlstore"
	"github.com/HardPulse/mazpan/internal/service"
	"github.com/HardPulse/mazpan/internal/support/i18n"
	"github.com/HardPulse/mazpan/internal/support/logging"
)

type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *sqlstore.Store
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(logging.Options{
		Level:       cfg.Log.SlogLevel(),
		Format:      cfg.Log.Format,
		AddSource:   cfg.Log.AddSource,
		Environment: cfg.Log.Environment,
		Version:     Version,
	})
}

// openApp loads config and opens the database. migrate runs pending migrations first.
func openApp(ctx context.Context, migrate bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	db, dialect, err := bootstrap.OpenDatabase(ctx, cfg.DB, logger)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := migrations.Up(db, string(dialect)); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}
	return &app{cfg: cfg, logger: logger, store: sqlstore.NewStore(db, dialect)}, nil
}

func (a *app) Close() error {
	return a.store.DB().Close()
}

// services builds every service the HTTP layer and the jobs need.
func (a *app) services(ctx context.Context, bootTime time.Time) (api.Services, *bootstrap.Infrastructure, error) {
	signingKey, source, err := bootstrap.ResolveJWTSigningKey(ctx, a.store.Settings(), a.cfg.Auth.SigningKey, time.Now)
	if err != nil {
		return api.Services{}, nil, err
	}
	a.logger.Info("jwt signing key loaded", "source", string(source))

	infra, err := bootstrap.BuildInfrastructure(a.cfg, signingKey, a.logger)
	if err != nil {
		return api.Services{}, nil, err
	}

	i18nManager, err := i18n.NewManager(
		i18n.WithLogger(a.logger),
		i18n.WithDefaultLang(a.cfg.I18n.DefaultLanguage),
	)
	if err != nil {
		return api.Services{}, nil, err
	}
	if dir := a.cfg.I18n.LocalesDir; dir != "" {
		if err := i18nManager.LoadFromDir(dir); err != nil {
			return api.Services{}, nil, fmt.Errorf("load locales: %w", err)
		}
	}

	store := a.store
	minPassword := a.cfg.Auth.MinPasswordLength
	fetcher := service.DefaultHostStatFetcher()

	return api.Services{
		Auth: service.NewAuthService(store, infra.Hasher, infra.Token, infra.RateLimiter, infra.Audit, service.AuthOptions{
			MinPasswordLength: minPassword,
			DefaultLanguage:   i18nManager.DefaultLanguage(),
			LoginAttempts:     a.cfg.Auth.LoginAttempts,
			LoginWindow:       a.cfg.Auth.LoginWindow,
		}, nil, a.logger),
		User: service.NewUserService(store, infra.Hasher, i18nManager, minPassword, nil, a.logger),
		Entitlement: service.NewEntitlementService(store, service.EntitlementOptions{
			VIPCap:    a.cfg.Entitlement.VIPCap,
			GrantDays: a.cfg.Entitlement.GrantDays,
		}, infra.Audit, nil, a.logger),
		Folder:    service.NewFolderService(store, nil, a.logger),
		Account:   service.NewAccountService(store, nil, a.logger),
		Shop:      service.NewShopService(store, infra.Audit, nil, a.logger),
		AdminUser: service.NewAdminUserService(store, infra.Hasher, i18nManager, minPassword, infra.Audit, nil, a.logger),
		AdminStat: service.NewAdminStatService(store, nil, a.logger),
		AdminSystem: service.NewAdminSystemService(service.AdminSystemOptions{
			Version:     Version,
			Environment: a.cfg.Log.Environment,
			StartedAt:   bootTime,
			DB:          store.DB(),
			DBDriver:    string(store.Dialect()),
			DiskPath:    diskPath(a.cfg),
			Fetcher:     &fetcher,
		}),
		RateLimiter: infra.RateLimiter,
		I18n:        i18nManager,
	}, infra, nil
}

// backupService fails with backup.ErrUnsupportedDriver on postgres.
func (a *app) backupService(ctx context.Context) (*backup.Service, error) {
	opts := backup.Options{
		Dir:      a.cfg.Backup.Dir,
		Driver:   string(a.store.Dialect()),
		Compress: a.cfg.Backup.Compress,
		Keep:     a.cfg.Backup.Keep,
		Logger:   a.logger,
	}
	if a.cfg.Backup.S3.Enabled {
		uploader, err := backup.NewS3Uploader(ctx, a.cfg.Backup.S3)
		if err != nil {
			return nil, err
		}
		opts.Uploader = uploader
	}
	return backup.New(a.store.DB(), opts)
}

func diskPath(cfg *config.Config) string {
	if cfg.DB.Driver == string(sqlstore.DialectPostgres) || cfg.DB.Path == "" {
		return "/"
	}
	return filepath.Dir(cfg.DB.Path)
}
