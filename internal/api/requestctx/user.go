// 文件路径: internal/api/requestctx/user.go
// 模块说明: 在请求上下文里保存已认证的调用者与语言。
package requestctx

import (
	"context"

	"github.com/HardPulse/mazpan/internal/service"
)

type contextKey string

const principalContextKey contextKey = "mazpan-principal"

// I18nKey 用于在 context 中存储语言标识的 key 类型。
type I18nKey struct{}

// DefaultLanguage is returned when no language was negotiated.
const DefaultLanguage = "ru"

// WithLanguage 将语言标识附加到 context 中供下游使用。
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, I18nKey{}, lang)
}

// GetLanguage 从 context 中获取语言标识，若未设置则返回默认值。
func GetLanguage(ctx context.Context) string {
	if ctx == nil {
		return DefaultLanguage
	}
	if lang, ok := ctx.Value(I18nKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLanguage
}

// WithPrincipal attaches the authenticated caller for downstream handlers.
func WithPrincipal(ctx context.Context, p service.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext fetches the caller, returning the zero value if missing.
func PrincipalFromContext(ctx context.Context) service.Principal {
	if ctx == nil {
		return service.Principal{}
	}
	p, _ := ctx.Value(principalContextKey).(service.Principal)
	return p
}
