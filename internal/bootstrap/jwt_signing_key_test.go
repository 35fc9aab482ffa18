package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HardPulse/mazpan/internal/config"
	"github.com/HardPulse/mazpan/internal/repository"
)

type memorySettings struct {
	values  map[string]*repository.Setting
	getErr  error
	saveErr error
}

func newMemorySettings() *memorySettings {
	return &memorySettings{values: map[string]*repository.Setting{}}
}

func (m *memorySettings) Get(_ context.Context, key string) (*repository.Setting, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.values[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (m *memorySettings) Upsert(_ context.Context, s *repository.Setting) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.values[s.Key] = s
	return nil
}

func fixedNow() time.Time { return time.Unix(1700000000, 0) }

func TestResolveJWTSigningKeyPrefersConfig(t *testing.T) {
	settings := newMemorySettings()
	key, source, err := ResolveJWTSigningKey(context.Background(), settings, "  from-config  ", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "from-config", key)
	assert.Equal(t, JWTSigningKeySourceConfig, source)
	assert.Empty(t, settings.values)
}

func TestResolveJWTSigningKeyReadsSettings(t *testing.T) {
	settings := newMemorySettings()
	settings.values[jwtSigningKeySettingKey] = &repository.Setting{Key: jwtSigningKeySettingKey, Value: " stored "}

	key, source, err := ResolveJWTSigningKey(context.Background(), settings, defaultJWTSigningKey, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "stored", key)
	assert.Equal(t, JWTSigningKeySourceSettings, source)
}

func TestResolveJWTSigningKeyGeneratesAndPersists(t *testing.T) {
	settings := newMemorySettings()
	reader := bytes.NewReader(bytes.Repeat([]byte{0xab}, jwtSigningKeyBytes))

	key, source, err := resolveJWTSigningKey(context.Background(), settings, "", jwtSigningKeyDeps{now: fixedNow, randReader: reader})
	require.NoError(t, err)
	assert.Equal(t, JWTSigningKeySourceGenerated, source)
	assert.Equal(t, strings.Repeat("ab", jwtSigningKeyBytes), key)

	saved := settings.values[jwtSigningKeySettingKey]
	require.NotNil(t, saved)
	assert.Equal(t, key, saved.Value)
	assert.Equal(t, jwtSigningKeyCategory, saved.Category)
	assert.Equal(t, fixedNow().Unix(), saved.UpdatedAt)

	again, source, err := ResolveJWTSigningKey(context.Background(), settings, "", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, key, again)
	assert.Equal(t, JWTSigningKeySourceSettings, source)
}

func TestResolveJWTSigningKeyErrors(t *testing.T) {
	_, _, err := ResolveJWTSigningKey(context.Background(), nil, "", fixedNow)
	require.Error(t, err)

	broken := newMemorySettings()
	broken.getErr = errors.New("disk gone")
	_, _, err = ResolveJWTSigningKey(context.Background(), broken, "", fixedNow)
	require.ErrorContains(t, err, "disk gone")

	readOnly := newMemorySettings()
	readOnly.saveErr = errors.New("read only")
	_, _, err = ResolveJWTSigningKey(context.Background(), readOnly, "", fixedNow)
	require.ErrorContains(t, err, "read only")

	_, _, err = resolveJWTSigningKey(context.Background(), newMemorySettings(), "", jwtSigningKeyDeps{now: fixedNow, randReader: bytes.NewReader(nil)})
	require.Error(t, err)
}

func TestBuildInfrastructureRejectsDefaultKey(t *testing.T) {
	cfg := &config.Config{Auth: config.AuthConfig{BcryptCost: 4, TokenTTL: time.Hour}}

	_, err := BuildInfrastructure(cfg, defaultJWTSigningKey, nil)
	require.ErrorIs(t, err, ErrDefaultSigningKey)
	_, err = BuildInfrastructure(nil, "a-real-key", nil)
	require.Error(t, err)

	infra, err := BuildInfrastructure(cfg, "a-real-key", nil)
	require.NoError(t, err)
	assert.NotNil(t, infra.Token)
	assert.NotNil(t, infra.RateLimiter)
	assert.NotNil(t, infra.Hasher)
}

func TestNewHTTPServer(t *testing.T) {
	srv := NewHTTPServer(config.HTTPConfig{Addr: ":9999"}, nil)
	assert.Equal(t, ":9999", srv.Addr)
	assert.Equal(t, readHeaderTimeout, srv.ReadHeaderTimeout)
	assert.Equal(t, ":8080", NewHTTPServer(config.HTTPConfig{}, nil).Addr)
}
