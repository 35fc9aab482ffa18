package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

// Manager 管理翻译内容。语言包以基础语言命名（en.json、ru.json）。
type Manager struct {
	defaultLang  string
	translations map[string]map[string]string
	matcher      language.Matcher
	tags         []language.Tag
	logger       *slog.Logger
	mu           sync.RWMutex
}

// Option 用于配置 Manager。
type Option func(*Manager)

// WithLogger 设置 Manager 使用的日志实例。
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithDefaultLang 设置默认语言。
func WithDefaultLang(lang string) Option {
	return func(m *Manager) {
		if base := baseOf(lang); base != "" {
			m.defaultLang = base
		}
	}
}

// NewManager 创建 i18n Manager。
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{
		defaultLang:  "ru",
		translations: make(map[string]map[string]string),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.loadEmbeddedTranslations(); err != nil {
		return nil, err
	}
	if _, ok := m.translations[m.defaultLang]; !ok {
		return nil, fmt.Errorf("i18n: default language %q has no locale file / 默认语言缺少语言包", m.defaultLang)
	}
	return m, nil
}

func (m *Manager) loadEmbeddedTranslations() error {
	sub, err := fs.Sub(embeddedLocales, "locales")
	if err != nil {
		return fmt.Errorf("i18n: embedded locales: %w", err)
	}
	return m.loadFS(sub, true)
}

// LoadFromDir merges <lang>.json files from dir over the embedded ones.
// A missing dir is not an error and unreadable files are skipped with a warning.
func (m *Manager) LoadFromDir(dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return m.loadFS(os.DirFS(dir), false)
}

// loadFS reads every top-level *.json of fsys. strict turns bad files into errors.
func (m *Manager) loadFS(fsys fs.FS, strict bool) error {
	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return fmt.Errorf("i18n: list locales: %w", err)
	}
	for _, name := range names {
		var content map[string]string
		data, err := fs.ReadFile(fsys, name)
		if err == nil {
			err = json.Unmarshal(data, &content)
		}
		if err != nil {
			if strict {
				return fmt.Errorf("i18n: locale %s: %w", name, err)
			}
			m.logger.Warn("skipping locale file", "file", name, "error", err)
			continue
		}
		m.merge(strings.TrimSuffix(name, ".json"), content)
	}
	return nil
}

func (m *Manager) merge(lang string, content map[string]string) {
	lang = baseOf(lang)
	if lang == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.translations[lang]; !exists {
		m.translations[lang] = make(map[string]string, len(content))
	}
	for k, v := range content {
		m.translations[lang][k] = v
	}
	m.rebuildMatcher()
}

// rebuildMatcher 需在持有写锁时调用；默认语言排在首位作为兜底。
func (m *Manager) rebuildMatcher() {
	langs := make([]string, 0, len(m.translations))
	for lang := range m.translations {
		if lang != m.defaultLang {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	tags := []language.Tag{language.Make(m.defaultLang)}
	for _, lang := range langs {
		tags = append(tags, language.Make(lang))
	}
	m.tags = tags
	m.matcher = language.NewMatcher(tags)
}

// Translate 按语言与键名返回翻译内容，依次回退到默认语言和键名本身。
func (m *Manager) Translate(lang, key string, args ...any) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, candidate := range []string{baseOf(lang), m.defaultLang} {
		if trans, ok := m.translations[candidate]; ok {
			if val, ok := trans[key]; ok {
				if len(args) > 0 {
					return fmt.Sprintf(val, args...)
				}
				return val
			}
		}
	}
	return key
}

// Supported reports whether lang (any BCP 47 form) has a locale file.
func (m *Manager) Supported(lang string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.translations[baseOf(lang)]
	return ok
}

// Match 根据 Accept-Language 头挑选最合适的已支持语言。
func (m *Manager) Match(acceptLanguage string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.matcher == nil {
		return m.defaultLang
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return m.defaultLang
	}
	_, idx, confidence := m.matcher.Match(tags...)
	if confidence == language.No {
		return m.defaultLang
	}
	return baseOf(m.tags[idx].String())
}

// DefaultLanguage returns the fallback language.
func (m *Manager) DefaultLanguage() string {
	return m.defaultLang
}

// GetSupportedLanguages 返回支持的语言列表（已排序）。
func (m *Manager) GetSupportedLanguages() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	langs := make([]string, 0, len(m.translations))
	for k := range m.translations {
		langs = append(langs, k)
	}
	sort.Strings(langs)
	return langs
}

// Normalize returns the base language of lang ("ru-RU" → "ru"), or "" when unparsable.
func Normalize(lang string) string {
	return baseOf(lang)
}

func baseOf(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}
