package bootstrap

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/HardPulse/mazpan/internal/repository"
)

// JWTSigningKeySource tells where the active signing key came from.
type JWTSigningKeySource string

const (
	JWTSigningKeySourceConfig    JWTSigningKeySource = "config"
	JWTSigningKeySourceSettings  JWTSigningKeySource = "settings"
	JWTSigningKeySourceGenerated JWTSigningKeySource = "generated"
)

const (
	defaultJWTSigningKey    = "change-me"
	jwtSigningKeySettingKey = "auth_signing_key"
	jwtSigningKeyCategory   = "security"
	jwtSigningKeyBytes      = 32

	signingKeyHint = "set MAZPAN_AUTH_SIGNING_KEY to override / 可通过 MAZPAN_AUTH_SIGNING_KEY 指定"
)

type jwtSigningKeyDeps struct {
	now        func() time.Time
	randReader io.Reader
}

// ResolveJWTSigningKey picks the token signing key. An explicit non-default
// config value wins, then the key stored in settings, and otherwise a random
// key is generated and stored.
func ResolveJWTSigningKey(ctx context.Context, settings repository.SettingRepository, configuredKey string, now func() time.Time) (string, JWTSigningKeySource, error) {
	return resolveJWTSigningKey(ctx, settings, configuredKey, jwtSigningKeyDeps{now: now, randReader: rand.Reader})
}

func resolveJWTSigningKey(ctx context.Context, settings repository.SettingRepository, configuredKey string, deps jwtSigningKeyDeps) (string, JWTSigningKeySource, error) {
	if key := strings.TrimSpace(configuredKey); key != "" && key != defaultJWTSigningKey {
		return key, JWTSigningKeySourceConfig, nil
	}
	if settings == nil {
		return "", "", fmt.Errorf("signing key: no settings store to load from; %s", signingKeyHint)
	}
	if deps.now == nil {
		deps.now = time.Now
	}
	if deps.randReader == nil {
		deps.randReader = rand.Reader
	}

	stored, err := settings.Get(ctx, jwtSigningKeySettingKey)
	switch {
	case err == nil:
		if key := strings.TrimSpace(stored.Value); key != "" {
			return key, JWTSigningKeySourceSettings, nil
		}
	case !errors.Is(err, repository.ErrNotFound):
		return "", "", fmt.Errorf("signing key: load from settings: %w; %s", err, signingKeyHint)
	}

	raw := make([]byte, jwtSigningKeyBytes)
	if _, err := io.ReadFull(deps.randReader, raw); err != nil {
		return "", "", fmt.Errorf("signing key: generate: %w; %s", err, signingKeyHint)
	}
	key := hex.EncodeToString(raw)
	if err := settings.Upsert(ctx, &repository.Setting{
		Key:       jwtSigningKeySettingKey,
		Value:     key,
		Category:  jwtSigningKeyCategory,
		UpdatedAt: deps.now().Unix(),
	}); err != nil {
		return "", "", fmt.Errorf("signing key: persist: %w; %s", err, signingKeyHint)
	}
	return key, JWTSigningKeySourceGenerated, nil
}
