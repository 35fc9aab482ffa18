package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "MAZPAN"

// Load reads defaults, config.yaml, .env and MAZPAN_* variables, in that order of precedence.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom behaves like Load but reads the given config file when path is non-empty.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/mazpan/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"bootstrap.admin.username", "bootstrap.admin.password", "backup.s3.access_key", "backup.s3.secret_key"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := loadDotEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", "0.0.0.0:8080")
	v.SetDefault("http.shutdown_timeout", "15s")
	v.SetDefault("http.body_limit", 10<<20)
	v.SetDefault("http.allowed_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.environment", "production")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/mazpan.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.connect_timeout", "30s")

	v.SetDefault("auth.signing_key", "change-me")
	v.SetDefault("auth.token_ttl", "720h")
	v.SetDefault("auth.issuer", "mazpan")
	v.SetDefault("auth.audience", "mazpan-client")
	v.SetDefault("auth.leeway", "30s")
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.min_password_length", 6)
	v.SetDefault("auth.login_attempts", 10)
	v.SetDefault("auth.login_window", "5m")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "mazpan")
	v.SetDefault("metrics.subsystem", "http")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 300)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("i18n.default_language", "ru")
	v.SetDefault("i18n.locales_dir", "")

	v.SetDefault("bootstrap.admin.username", "")
	v.SetDefault("bootstrap.admin.password", "")

	v.SetDefault("backup.dir", "data/backups")
	v.SetDefault("backup.compress", true)
	v.SetDefault("backup.schedule", "")
	v.SetDefault("backup.keep", 7)
	v.SetDefault("backup.s3.enabled", false)
	v.SetDefault("backup.s3.region", "us-east-1")
	v.SetDefault("backup.s3.prefix", "mazpan/")

	v.SetDefault("entitlement.vip_cap", 20)
	v.SetDefault("entitlement.grant_days", 30)
}

func loadDotEnv(v *viper.Viper) error {
	candidates := []string{".", "..", "../.."}
	for _, path := range candidates {
		file := filepath.Clean(filepath.Join(path, ".env"))
		if _, err := os.Stat(file); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("stat .env: %w", err)
		}

		values, err := godotenv.Read(file)
		if err != nil {
			return fmt.Errorf("read .env: %w", err)
		}
		bindLegacyEnv(v, values)
	}
	return nil
}

// legacyEnv maps flat .env keys onto the hierarchical config.
var legacyEnv = map[string]string{
	"HTTP_ADDR":          "http.addr",
	"SHUTDOWN_TIMEOUT":   "http.shutdown_timeout",
	"LOG_LEVEL":          "log.level",
	"LOG_FORMAT":         "log.format",
	"APP_ENV":            "log.environment",
	"DB_DRIVER":          "database.driver",
	"DB_PATH":            "database.path",
	"DATABASE_URL":       "database.dsn",
	"SECRET_KEY":         "auth.signing_key",
	"AUTH_TOKEN_TTL":     "auth.token_ttl",
	"DEFAULT_LANGUAGE":   "i18n.default_language",
	"ADMIN_USERNAME":     "bootstrap.admin.username",
	"ADMIN_PASSWORD":     "bootstrap.admin.password",
	"BACKUP_DIR":         "backup.dir",
	"BACKUP_SCHEDULE":    "backup.schedule",
	"S3_BUCKET":          "backup.s3.bucket",
	"S3_ENDPOINT":        "backup.s3.endpoint",
	"S3_ACCESS_KEY":      "backup.s3.access_key",
	"S3_SECRET_KEY":      "backup.s3.secret_key",
	"VIP_USER_CAP":       "entitlement.vip_cap",
	"ROLE_DURATION_DAYS": "entitlement.grant_days",
}

// bindLegacyEnv 把 .env 中的扁平键写入配置；真实环境变量优先，不会被覆盖。
func bindLegacyEnv(target *viper.Viper, values map[string]string) {
	for oldKey, newKey := range legacyEnv {
		val := strings.TrimSpace(values[oldKey])
		if val == "" {
			continue
		}
		envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(newKey, ".", "_"))
		if _, ok := os.LookupEnv(envKey); ok {
			continue
		}
		target.Set(newKey, val)
	}
}
