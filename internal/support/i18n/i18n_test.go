package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateFallbacks(t *testing.T) {
	m, err := NewManager(WithDefaultLang("ru"))
	require.NoError(t, err)

	assert.Equal(t, "Folder not found", m.Translate("en-US", "folder.not_found"))
	assert.Equal(t, "Папка не найдена", m.Translate("de", "folder.not_found"))
	assert.Equal(t, "Uploaded 3 accounts", m.Translate("en", "message.accounts_uploaded", 3))
	assert.Equal(t, "missing.key", m.Translate("en", "missing.key"))
}

func TestMatchAndSupported(t *testing.T) {
	m, err := NewManager(WithDefaultLang("ru-RU"))
	require.NoError(t, err)

	assert.Equal(t, "ru", m.DefaultLanguage())
	assert.Equal(t, "en", m.Match("en-GB,en;q=0.9"))
	assert.Equal(t, "ru", m.Match("ja"))
	assert.Equal(t, "ru", m.Match(""))
	assert.True(t, m.Supported("EN"))
	assert.False(t, m.Supported("xx-invalid-tag!"))
	assert.Equal(t, []string{"en", "ru"}, m.GetSupportedLanguages())
}

func TestLoadFromDirOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"folder.not_found":"No such folder"}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "uk.json"), []byte(`{"folder.not_found":"Теку не знайдено"}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "de.json"), []byte(`{not json`), 0o600))

	m, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, m.LoadFromDir(dir))
	require.NoError(t, m.LoadFromDir(filepath.Join(dir, "absent")))

	assert.Equal(t, "No such folder", m.Translate("en", "folder.not_found"))
	assert.True(t, m.Supported("uk"))
	assert.False(t, m.Supported("de"))
}
