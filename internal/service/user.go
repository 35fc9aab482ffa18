// 文件路径: internal/service/user.go
// 模块说明: 当前用户资料、语言与设置。
package service

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/support/hash"
	"github.com/HardPulse/mazpan/internal/support/i18n"
)

// UserService exposes self-service profile operations.
type UserService interface {
	Me(ctx context.Context, userID string) (*UserView, error)
	SetLanguage(ctx context.Context, userID, language string) (*UserView, error)
	UpdateSettings(ctx context.Context, userID string, input UpdateSettingsInput) (*UserView, error)
}

// UpdateSettingsInput changes language and/or password; nil fields are left alone.
type UpdateSettingsInput struct {
	Language        *string `json:"language,omitempty"`
	CurrentPassword string  `json:"current_password,omitempty"`
	NewPassword     *string `json:"new_password,omitempty"`
}

// LanguageSet reports which UI languages exist.
type LanguageSet interface {
	Supported(lang string) bool
}

type userService struct {
	store       repository.Store
	hasher      hash.Hasher
	languages   LanguageSet
	minPassword int
	clock       Clock
	logger      *slog.Logger
}

// NewUserService 构造用户自助服务。
func NewUserService(store repository.Store, hasher hash.Hasher, languages LanguageSet, minPassword int, clock Clock, logger *slog.Logger) UserService {
	if minPassword <= 0 {
		minPassword = 6
	}
	return &userService{store: store, hasher: hasher, languages: languages, minPassword: minPassword, clock: clock, logger: discardLogger(logger)}
}

func (s *userService) Me(ctx context.Context, userID string) (*UserView, error) {
	if err := expireRoles(ctx, s.store.Users(), s.clock.now(), s.logger); err != nil {
		return nil, err
	}
	user, err := findUser(ctx, s.store.Users(), userID)
	if err != nil {
		return nil, err
	}
	view := newUserView(user)
	return &view, nil
}

func (s *userService) SetLanguage(ctx context.Context, userID, language string) (*UserView, error) {
	return s.UpdateSettings(ctx, userID, UpdateSettingsInput{Language: &language})
}

func (s *userService) UpdateSettings(ctx context.Context, userID string, input UpdateSettingsInput) (*UserView, error) {
	user, err := findUser(ctx, s.store.Users(), userID)
	if err != nil {
		return nil, err
	}
	if input.Language != nil {
		lang := i18n.Normalize(*input.Language)
		if lang == "" || (s.languages != nil && !s.languages.Supported(lang)) {
			return nil, ErrLanguageUnsupported
		}
		user.Language = lang
	}
	if input.NewPassword != nil {
		if err := s.hasher.Compare(user.Password, input.CurrentPassword); err != nil {
			if errors.Is(err, hash.ErrPasswordMismatch) {
				return nil, ErrWrongPassword
			}
			return nil, err
		}
		if utf8.RuneCountInString(*input.NewPassword) < s.minPassword {
			return nil, ErrPasswordTooShort
		}
		hashed, err := hashPassword(s.hasher, *input.NewPassword)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}
	user.UpdatedAt = s.clock.now().Unix()
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	view := newUserView(user)
	return &view, nil
}
