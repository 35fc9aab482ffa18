// 文件路径: internal/api/handler/admin_util.go
// 模块说明: handler 共用的小工具：请求体解析、查询参数、调用者与客户端 IP。
package handler

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/HardPulse/mazpan/internal/api/requestctx"
	"github.com/HardPulse/mazpan/internal/service"
)

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func clampQueryInt(raw string, def, maxValue int) int {
	if strings.TrimSpace(raw) == "" {
		return def
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	if value < 1 {
		return 1
	}
	if value > maxValue {
		return maxValue
	}
	return value
}

func principalOf(r *http.Request) service.Principal {
	return requestctx.PrincipalFromContext(r.Context())
}

// clientIP returns the host part of RemoteAddr (already rewritten by chi RealIP).
func clientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func withLanguage(r *http.Request, lang string) context.Context {
	return requestctx.WithLanguage(r.Context(), lang)
}
