package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/HardPulse/mazpan/internal/api/requestctx"
	"github.com/HardPulse/mazpan/internal/support/i18n"
)

// I18n middleware detects the caller's preferred language and stores it in the context.
// Order: ?lang, X-I18N-Lang header, i18next cookie, Accept-Language.
func I18n(manager *i18n.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := i18n.Normalize(explicitLanguage(r))
			if lang == "" || (manager != nil && !manager.Supported(lang)) {
				lang = ""
				if manager != nil {
					lang = manager.Match(r.Header.Get("Accept-Language"))
				}
			}
			if lang == "" {
				lang = requestctx.DefaultLanguage
			}

			ctx := requestctx.WithLanguage(r.Context(), lang)
			annotateLanguage(ctx, lang)

			// Persist an explicit ?lang selection.
			if r.URL.Query().Get("lang") != "" {
				http.SetCookie(w, &http.Cookie{
					Name:     "i18next",
					Value:    lang,
					Path:     "/",
					Expires:  time.Now().Add(365 * 24 * time.Hour),
					HttpOnly: false,
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// explicitLanguage returns the language the caller asked for, ignoring Accept-Language.
func explicitLanguage(r *http.Request) string {
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		return lang
	}
	if lang := strings.TrimSpace(r.Header.Get("X-I18N-Lang")); lang != "" {
		return lang
	}
	if cookie, err := r.Cookie("i18next"); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}
