// 文件路径: internal/api/router.go
// 模块说明: chi 路由装配：全局中间件、健康检查、指标与 /api 业务路由。
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HardPulse/mazpan/internal/api/handler"
	"github.com/HardPulse/mazpan/internal/api/middleware"
	"github.com/HardPulse/mazpan/internal/config"
	"github.com/HardPulse/mazpan/internal/security"
	"github.com/HardPulse/mazpan/internal/service"
	"github.com/HardPulse/mazpan/internal/support/i18n"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth        service.AuthService
	User        service.UserService
	Entitlement service.EntitlementService
	Folder      service.FolderService
	Account     service.AccountService
	Shop        service.ShopService
	AdminUser   service.AdminUserService
	AdminStat   service.AdminStatService
	AdminSystem service.AdminSystemService
	RateLimiter *security.RateLimiter
	I18n        *i18n.Manager
}

// RouterConfig carries the config sections the router reads.
type RouterConfig struct {
	HTTP      config.HTTPConfig
	Metrics   config.MetricsConfig
	RateLimit config.RateLimitConfig
	// Registry replaces the default Prometheus registry when set.
	Registry *prometheus.Registry
}

func (s Services) validate() {
	switch {
	case s.Auth == nil:
		panic("router requires AuthService")
	case s.User == nil:
		panic("router requires UserService")
	case s.Entitlement == nil:
		panic("router requires EntitlementService")
	case s.Folder == nil:
		panic("router requires FolderService")
	case s.Account == nil:
		panic("router requires AccountService")
	case s.Shop == nil:
		panic("router requires ShopService")
	case s.AdminUser == nil:
		panic("router requires AdminUserService")
	case s.AdminStat == nil:
		panic("router requires AdminStatService")
	case s.AdminSystem == nil:
		panic("router requires AdminSystemService")
	case s.I18n == nil:
		panic("router requires I18n Manager")
	}
}

// NewRouter wires middleware and every API route.
func NewRouter(logger *slog.Logger, services Services, cfg RouterConfig) http.Handler {
	services.validate()
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
	)

	mCfg := middleware.DefaultMetricsConfig()
	if cfg.Metrics.Namespace != "" {
		mCfg.Namespace = cfg.Metrics.Namespace
	}
	if cfg.Metrics.Subsystem != "" {
		mCfg.Subsystem = cfg.Metrics.Subsystem
	}
	if len(cfg.Metrics.Buckets) > 0 {
		mCfg.Buckets = cfg.Metrics.Buckets
	}
	var registerer prometheus.Registerer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if cfg.Registry != nil {
		registerer = cfg.Registry
		gatherer = cfg.Registry
	}
	if cfg.Metrics.Enabled {
		r.Use(middleware.NewMetrics(mCfg, registerer).Middleware)
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.AllowedOrigins) > 0 {
		cors.AllowedOrigins = cfg.HTTP.AllowedOrigins
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.StructuredLogger(middleware.LoggingConfig{
			Logger:        logger,
			SlowThreshold: 500 * time.Millisecond,
			SkipPaths:     []string{"/health", "/healthz", "/api/health", "/metrics"},
		}),
		chiMiddleware.Recoverer,
		middleware.CORS(cors),
		middleware.I18n(services.I18n),
		middleware.BodyLimit(middleware.BodyLimitConfig{MaxBytes: cfg.HTTP.BodyLimit, Translator: services.I18n}),
	}

	if cfg.RateLimit.Enabled && services.RateLimiter != nil {
		rl := middleware.DefaultRateLimitConfig()
		if cfg.RateLimit.Requests > 0 {
			rl.Limit = cfg.RateLimit.Requests
		}
		if cfg.RateLimit.Window > 0 {
			rl.Window = cfg.RateLimit.Window
		}
		rl.Logger = logger
		rl.Translator = services.I18n
		middlewares = append(middlewares, middleware.RateLimit(services.RateLimiter, rl))
	}
	middlewares = append(middlewares, chiMiddleware.Compress(5))

	r.Use(middlewares...)

	health := func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"status": "healthy",
			"ts":     time.Now().UTC().Format(time.RFC3339Nano),
		})
	}
	r.Get("/api/health", health)
	// Aliases for container probes.
	r.Get("/health", health)
	r.Get("/healthz", health)

	if cfg.Metrics.Enabled {
		metricsHandler := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
		r.With(middleware.MetricsGuard(cfg.Metrics.Token)).Handle("/metrics", metricsHandler)
	}

	registerAPIRoutes(r, logger, services)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		logger.Warn("unmapped route hit", "method", req.Method, "path", req.URL.Path)
		handler.RespondErrorI18n(req.Context(), w, http.StatusNotFound, "error.not_found", services.I18n)
	})

	return r
}

func registerAPIRoutes(root chi.Router, logger *slog.Logger, s Services) {
	authHandler := handler.NewAuthHandler(s.Auth, s.I18n, logger)
	userHandler := handler.NewUserHandler(s.User, s.Entitlement, s.I18n, logger)
	folderHandler := handler.NewFolderHandler(s.Folder, s.I18n, logger)
	accountHandler := handler.NewAccountHandler(s.Account, s.I18n, logger)
	shopHandler := handler.NewShopHandler(s.Shop, s.I18n, logger)
	adminUserHandler := handler.NewAdminUserHandler(s.AdminUser, s.I18n, logger)
	adminStatHandler := handler.NewAdminStatHandler(s.AdminStat)
	adminSystemHandler := handler.NewAdminSystemHandler(s.AdminSystem)

	userGuard := middleware.UserGuard(s.Auth, s.I18n)
	staffGuard := middleware.StaffGuard(s.Auth, s.I18n)
	adminGuard := middleware.AdminGuard(s.Auth, s.I18n)

	root.Route("/api", func(api chi.Router) {
		api.Post("/register", authHandler.Register)
		api.Post("/login", authHandler.Login)

		api.Group(func(user chi.Router) {
			user.Use(userGuard)
			user.Get("/me", userHandler.Me)

			user.Route("/user", func(u chi.Router) {
				u.Post("/language", userHandler.SetLanguage)
				u.Put("/settings", userHandler.UpdateSettings)
				u.Get("/role-info", userHandler.RoleInfo)
				u.Post("/upgrade-role", userHandler.UpgradeRole)
			})

			user.Route("/folders", func(f chi.Router) {
				f.Get("/", folderHandler.List)
				f.Post("/", folderHandler.Create)
				f.Delete("/{id}", folderHandler.Delete)
				f.Post("/{id}/cooldown", folderHandler.SetCooldown)
			})

			user.Route("/accounts", func(a chi.Router) {
				a.Get("/", accountHandler.List)
				a.Post("/", accountHandler.Upload)
				a.Post("/download", accountHandler.Download)
				a.Post("/move", accountHandler.Move)
				a.Post("/delete", accountHandler.Delete)
				a.Post("/select", accountHandler.Select)
			})

			user.Route("/shop", func(shop chi.Router) {
				shop.Get("/categories", shopHandler.ListCategories)
				shop.Get("/products", shopHandler.ListProducts)
				shop.Get("/products/{id}", shopHandler.GetProduct)
				shop.Post("/products/{id}/purchase", shopHandler.Purchase)
				shop.Get("/purchases", shopHandler.ListPurchases)

				// 目录修改仅限管理员。
				shop.Group(func(catalog chi.Router) {
					catalog.Use(adminGuard)
					catalog.Post("/categories", shopHandler.CreateCategory)
					catalog.Delete("/categories/{id}", shopHandler.DeleteCategory)
					catalog.Post("/products", shopHandler.CreateProduct)
					catalog.Put("/products/{id}", shopHandler.UpdateProduct)
					catalog.Delete("/products/{id}", shopHandler.DeleteProduct)
				})
			})
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(staffGuard)
			admin.Get("/pending-users", adminUserHandler.Pending)
			admin.Get("/users", adminUserHandler.List)
			admin.Post("/user-action", adminUserHandler.Action)
			admin.Delete("/users/{id}", adminUserHandler.Delete)
			admin.Put("/users/{id}", adminUserHandler.Edit)
			admin.Get("/shop-statistics", adminStatHandler.ShopStatistics)
			admin.Get("/statistics", adminStatHandler.Statistics)
			admin.With(adminGuard).Get("/system/status", adminSystemHandler.Status)
		})
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
