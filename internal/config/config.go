// 文件路径: internal/config/config.go
// 模块说明: 配置结构体与默认值，由 viper 从文件与 MAZPAN_ 环境变量加载。
package config

import (
	"log/slog"
	"time"
)

// Config 汇总应用的全部配置。
type Config struct {
	HTTP        HTTPConfig        `mapstructure:"http"`
	Log         LogConfig         `mapstructure:"log"`
	DB          DBConfig          `mapstructure:"database"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	I18n        I18nConfig        `mapstructure:"i18n"`
	Bootstrap   BootstrapConfig   `mapstructure:"bootstrap"`
	Backup      BackupConfig      `mapstructure:"backup"`
	Entitlement EntitlementConfig `mapstructure:"entitlement"`
}

// MetricsConfig 定义 Prometheus 指标配置。
type MetricsConfig struct {
	Enabled   bool      `mapstructure:"enabled"`
	Namespace string    `mapstructure:"namespace"`
	Subsystem string    `mapstructure:"subsystem"`
	Token     string    `mapstructure:"token"`
	Buckets   []float64 `mapstructure:"buckets"`
}

// HTTPConfig 定义 HTTP 服务配置。
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	BodyLimit       int64         `mapstructure:"body_limit"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// LogConfig 定义日志配置。
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	AddSource   bool   `mapstructure:"add_source"`
	Environment string `mapstructure:"environment"`
}

// DBConfig 定义数据库配置。driver 取 sqlite 或 postgres。
type DBConfig struct {
	Driver         string        `mapstructure:"driver"`
	Path           string        `mapstructure:"path"`
	DSN            string        `mapstructure:"dsn"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// AuthConfig 定义认证配置。
type AuthConfig struct {
	SigningKey        string        `mapstructure:"signing_key"`
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
	Issuer            string        `mapstructure:"issuer"`
	Audience          string        `mapstructure:"audience"`
	Leeway            time.Duration `mapstructure:"leeway"`
	BcryptCost        int           `mapstructure:"bcrypt_cost"`
	MinPasswordLength int           `mapstructure:"min_password_length"`
	LoginAttempts     int           `mapstructure:"login_attempts"`
	LoginWindow       time.Duration `mapstructure:"login_window"`
}

// RateLimitConfig 定义全局 HTTP 限流。
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// I18nConfig 定义多语言配置。
type I18nConfig struct {
	DefaultLanguage string `mapstructure:"default_language"`
	LocalesDir      string `mapstructure:"locales_dir"`
}

// BootstrapConfig 定义首次启动时的种子数据。
type BootstrapConfig struct {
	Admin AdminSeedConfig `mapstructure:"admin"`
}

// AdminSeedConfig seeds one approved Admin when both fields are set.
type AdminSeedConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// BackupConfig 定义数据库备份。
type BackupConfig struct {
	Dir      string   `mapstructure:"dir"`
	Compress bool     `mapstructure:"compress"`
	Schedule string   `mapstructure:"schedule"`
	Keep     int      `mapstructure:"keep"`
	S3       S3Config `mapstructure:"s3"`
}

// S3Config 定义备份上传的对象存储。
type S3Config struct {
	Enabled   bool   `mapstructure:"enabled"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// EntitlementConfig 定义临时角色参数。
type EntitlementConfig struct {
	VIPCap    int `mapstructure:"vip_cap"`
	GrantDays int `mapstructure:"grant_days"`
}

func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
