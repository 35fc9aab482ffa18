// 文件路径: internal/bootstrap/infra.go
// 模块说明: 令牌、哈希、限流与审计的装配。
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/HardPulse/mazpan/internal/auth/token"
	"github.com/HardPulse/mazpan/internal/cache"
	"github.com/HardPulse/mazpan/internal/config"
	"github.com/HardPulse/mazpan/internal/security"
	"github.com/HardPulse/mazpan/internal/support/hash"
)

// Infrastructure is shared by the auth, user and admin services.
type Infrastructure struct {
	Token       *token.Manager
	Hasher      hash.Hasher
	RateLimiter *security.RateLimiter
	Audit       security.Recorder
}

// ErrDefaultSigningKey rejects the placeholder key shipped in the sample config.
var ErrDefaultSigningKey = errors.New("auth.signing_key still has its placeholder value / 签名密钥仍为默认值")

// BuildInfrastructure builds the helpers from cfg and the key returned by ResolveJWTSigningKey.
func BuildInfrastructure(cfg *config.Config, signingKey string, logger *slog.Logger) (*Infrastructure, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required / 配置不能为空")
	}
	if signingKey == "" || signingKey == defaultJWTSigningKey {
		return nil, ErrDefaultSigningKey
	}

	tokens, err := token.NewManager(token.Options{
		SigningKey: []byte(signingKey),
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
		TTL:        cfg.Auth.TokenTTL,
		Leeway:     cfg.Auth.Leeway,
	})
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	hasher, err := hash.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	// HTTP limits and login throttling share one counter store under separate keys.
	counters := cache.NewStore(cache.Options{Prefix: "mazpan", DefaultWindow: cfg.RateLimit.Window})
	limiter, err := security.NewRateLimiter(counters)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	return &Infrastructure{
		Token:       tokens,
		Hasher:      hasher,
		RateLimiter: limiter,
		Audit:       security.NewLoggerRecorder(logger),
	}, nil
}
