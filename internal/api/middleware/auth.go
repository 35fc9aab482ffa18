// 文件路径: internal/api/middleware/auth.go
// 模块说明: Bearer 令牌校验与角色守卫（user / staff / admin）。
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/HardPulse/mazpan/internal/api/requestctx"
	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/service"
)

// Translator renders an i18n key for a language.
type Translator interface {
	Translate(lang, key string, args ...any) string
}

// UserGuard ensures requests carry a valid token of an unblocked user.
func UserGuard(auth service.AuthService, tr Translator) func(http.Handler) http.Handler {
	return guard(auth, tr, nil)
}

// StaffGuard admits Admin and Support.
func StaffGuard(auth service.AuthService, tr Translator) func(http.Handler) http.Handler {
	return guard(auth, tr, func(p service.Principal) bool { return p.Role.Staff() })
}

// AdminGuard admits Admin only.
func AdminGuard(auth service.AuthService, tr Translator) func(http.Handler) http.Handler {
	return guard(auth, tr, func(p service.Principal) bool { return p.Role == repository.RoleAdmin })
}

func guard(auth service.AuthService, tr Translator, allow func(service.Principal) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			// 外层守卫已认证时只检查角色。
			if p := requestctx.PrincipalFromContext(ctx); p.ID != "" {
				if allow != nil && !allow(p) {
					writeError(w, r, tr, http.StatusForbidden, "error.forbidden")
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			if auth == nil {
				writeError(w, r, tr, http.StatusUnauthorized, "error.unauthorized")
				return
			}
			token := extractBearer(r.Header.Get("Authorization"))
			if token == "" {
				writeError(w, r, tr, http.StatusUnauthorized, "error.unauthorized")
				return
			}
			principal, err := auth.Verify(ctx, token)
			if err != nil {
				writeError(w, r, tr, http.StatusUnauthorized, service.ErrorKey(err))
				return
			}
			ctx = requestctx.WithPrincipal(ctx, *principal)
			annotateCaller(ctx, principal.ID, string(principal.Role))
			// 调用方未显式指定语言时使用用户保存的语言。
			if explicitLanguage(r) == "" && principal.Language != "" {
				ctx = requestctx.WithLanguage(ctx, principal.Language)
				annotateLanguage(ctx, principal.Language)
			}
			r = r.WithContext(ctx)
			if allow != nil && !allow(*principal) {
				writeError(w, r, tr, http.StatusForbidden, "error.forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractBearer(header string) string {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return ""
	}
	parts := strings.SplitN(trimmed, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return trimmed
}

func writeError(w http.ResponseWriter, r *http.Request, tr Translator, status int, key string) {
	msg := key
	if tr != nil {
		msg = tr.Translate(requestctx.GetLanguage(r.Context()), key)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
		"code":  key,
	})
}
