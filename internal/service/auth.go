// 文件路径: internal/service/auth.go
// 模块说明: 注册、登录节流、令牌校验与初始管理员。
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/HardPulse/mazpan/internal/auth/token"
	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/security"
	"github.com/HardPulse/mazpan/internal/support/hash"
	"github.com/HardPulse/mazpan/internal/telemetry"
)

// AuthService covers registration, login and bearer token verification.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*UserView, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Verify(ctx context.Context, rawToken string) (*Principal, error)
	// EnsureAdmin creates an approved Admin with a Main folder when the username is free.
	EnsureAdmin(ctx context.Context, username, password string) (*UserView, bool, error)
}

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginInput represents the payload required for user login.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IP       string `json:"-"`
}

// LoginResult returns issued token information and user snapshot.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserView  `json:"user"`
}

// AuthOptions tunes credential policy.
type AuthOptions struct {
	MinPasswordLength int
	DefaultLanguage   string
	LoginAttempts     int
	LoginWindow       time.Duration
}

const (
	usernameMinRunes = 3
	usernameMaxRunes = 64
)

type authService struct {
	store    repository.Store
	hasher   hash.Hasher
	tokenMgr *token.Manager
	rate     *security.RateLimiter
	audit    security.Recorder
	opts     AuthOptions
	clock    Clock
	logger   *slog.Logger
}

// NewAuthService wires repository + infrastructure helpers.
func NewAuthService(store repository.Store, hasher hash.Hasher, tokenMgr *token.Manager, rate *security.RateLimiter, audit security.Recorder, opts AuthOptions, clock Clock, logger *slog.Logger) AuthService {
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = 6
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "ru"
	}
	if opts.LoginAttempts <= 0 {
		opts.LoginAttempts = 10
	}
	if opts.LoginWindow <= 0 {
		opts.LoginWindow = 5 * time.Minute
	}
	if audit == nil {
		audit = security.NopRecorder{}
	}
	return &authService{
		store:    store,
		hasher:   hasher,
		tokenMgr: tokenMgr,
		rate:     rate,
		audit:    audit,
		opts:     opts,
		clock:    clock,
		logger:   discardLogger(logger),
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*UserView, error) {
	user, err := s.newUser(input.Username, input.Password)
	if err != nil {
		return nil, err
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	view := newUserView(user)
	return &view, nil
}

// newUser 校验用户名与密码并构造待审核的普通用户。
func (s *authService) newUser(username, password string) (*repository.User, error) {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < usernameMinRunes || n > usernameMaxRunes {
		return nil, ErrUsernameInvalid
	}
	if utf8.RuneCountInString(password) < s.opts.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	hashed, err := hashPassword(s.hasher, password)
	if err != nil {
		return nil, err
	}
	now := s.clock.now().Unix()
	return &repository.User{
		ID:        newID(),
		Username:  username,
		Password:  hashed,
		Role:      repository.RoleUser,
		Language:  s.opts.DefaultLanguage,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if s.tokenMgr == nil {
		return nil, fmt.Errorf("auth service not fully configured / 认证服务未完整配置")
	}
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}
	limitKey := security.Key("login", username)
	if s.rate != nil {
		res, err := s.rate.Allow(ctx, limitKey, s.opts.LoginAttempts, s.opts.LoginWindow)
		if err != nil {
			return nil, err
		}
		if !res.Allowed {
			s.recordLogin(ctx, security.KindLoginThrottled, "", username, input.IP, "rate_limited")
			return nil, ErrRateLimited
		}
	}

	user, err := s.store.Users().FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.recordLogin(ctx, security.KindLoginFailed, "", username, input.IP, "unknown_user")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.hasher.Compare(user.Password, input.Password); err != nil {
		if errors.Is(err, hash.ErrPasswordMismatch) {
			s.recordLogin(ctx, security.KindLoginFailed, user.ID, username, input.IP, "bad_password")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Blocked {
		s.recordLogin(ctx, security.KindLoginFailed, user.ID, username, input.IP, "blocked")
		return nil, ErrAccountBlocked
	}
	if !user.Approved {
		s.recordLogin(ctx, security.KindLoginFailed, user.ID, username, input.IP, "pending")
		return nil, ErrPendingApproval
	}

	now := s.clock.now()
	if err := expireRoles(ctx, s.store.Users(), now, s.logger); err != nil {
		return nil, err
	}
	if s.hasher.NeedsRehash(user.Password) {
		if rehashed, err := s.hasher.Hash(input.Password); err == nil {
			fresh, err := s.store.Users().FindByID(ctx, user.ID)
			if err == nil {
				fresh.Password = rehashed
				fresh.UpdatedAt = now.Unix()
				if err := s.store.Users().Update(ctx, fresh); err != nil {
					s.logger.WarnContext(ctx, "password rehash failed", "user_id", user.ID, "error", err)
				}
				user = fresh
			}
		}
	}
	if s.rate != nil {
		s.rate.Reset(ctx, limitKey)
	}

	signed, claims, err := s.tokenMgr.Issue(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, err
	}
	s.recordLogin(ctx, security.KindLoginSucceeded, user.ID, username, input.IP, "")
	return &LoginResult{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        newUserView(user),
	}, nil
}

func (s *authService) Verify(ctx context.Context, rawToken string) (*Principal, error) {
	if s.tokenMgr == nil {
		return nil, ErrUnauthorized
	}
	claims, err := s.tokenMgr.Parse(strings.TrimSpace(rawToken))
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if err := expireRoles(ctx, s.store.Users(), s.clock.now(), s.logger); err != nil {
		return nil, err
	}
	user, err := s.store.Users().FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if user.Blocked {
		return nil, ErrAccountBlocked
	}
	return &Principal{ID: user.ID, Username: user.Username, Role: user.Role, Language: user.Language}, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, username, password string) (*UserView, bool, error) {
	existing, err := s.store.Users().FindByUsername(ctx, strings.TrimSpace(username))
	if err == nil {
		view := newUserView(existing)
		return &view, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	user, err := s.newUser(username, password)
	if err != nil {
		return nil, false, err
	}
	user.Role = repository.RoleAdmin
	user.Approved = true
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		_, err := ensureMainFolder(ctx, tx.Folders(), user.ID, s.clock.now())
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, false, ErrUsernameExists
		}
		return nil, false, err
	}
	s.logger.InfoContext(ctx, "admin account created", "user_id", user.ID, "username", user.Username)
	view := newUserView(user)
	return &view, true, nil
}

func (s *authService) recordLogin(ctx context.Context, kind, userID, username, ip, reason string) {
	outcome := "ok"
	if kind != security.KindLoginSucceeded {
		outcome = reason
	}
	telemetry.Logins.WithLabelValues(outcome).Inc()
	meta := map[string]any{"username": username}
	if reason != "" {
		meta["reason"] = reason
	}
	s.audit.Record(ctx, security.Event{Kind: kind, ActorID: userID, IP: ip, Metadata: meta})
}
