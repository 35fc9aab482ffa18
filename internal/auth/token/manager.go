// 文件路径: internal/auth/token/manager.go
// 模块说明: HS256 访问令牌的签发与校验，subject 为用户 ID。
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is the lifetime of an access token when none is configured.
const DefaultTTL = 30 * 24 * time.Hour

var (
	// ErrInvalidToken covers malformed, foreign or tampered tokens.
	ErrInvalidToken = errors.New("invalid token / 无效的 token")
	// ErrExpiredToken is returned once exp plus leeway has passed.
	ErrExpiredToken = errors.New("token expired / token 已过期")
)

// Options configure a Manager.
type Options struct {
	SigningKey []byte
	Issuer     string
	Audience   string
	TTL        time.Duration
	Leeway     time.Duration
	Now        func() time.Time
}

// Claims is the token payload. Username and role are informational, the
// caller's current state is always reloaded from storage.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"usr,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Manager signs and verifies access tokens.
type Manager struct {
	key    []byte
	opts   Options
	parser *jwt.Parser
}

// NewManager validates opts and fills defaults.
func NewManager(opts Options) (*Manager, error) {
	if len(opts.SigningKey) == 0 {
		return nil, fmt.Errorf("signing key is required / 签名密钥不能为空")
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	opts.Leeway = max(opts.Leeway, 0)
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Issuer = strings.TrimSpace(opts.Issuer)
	opts.Audience = strings.TrimSpace(opts.Audience)

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(opts.Leeway),
		jwt.WithTimeFunc(opts.Now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}

	return &Manager{
		key:    append([]byte(nil), opts.SigningKey...),
		opts:   opts,
		parser: jwt.NewParser(parserOpts...),
	}, nil
}

// TTL returns the lifetime given to new tokens.
func (m *Manager) TTL() time.Duration { return m.opts.TTL }

// Issue signs a token for userID.
func (m *Manager) Issue(userID, username, role string) (string, *Claims, error) {
	if strings.TrimSpace(userID) == "" {
		return "", nil, fmt.Errorf("token subject is required / token subject 不能为空")
	}
	now := m.opts.Now().UTC().Truncate(time.Second)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.opts.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.opts.TTL)),
		},
		Username: username,
		Role:     role,
	}
	if m.opts.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.opts.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies raw and returns its claims.
func (m *Manager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := m.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.key, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case strings.TrimSpace(claims.Subject) == "":
		return nil, ErrInvalidToken
	}
	return claims, nil
}
