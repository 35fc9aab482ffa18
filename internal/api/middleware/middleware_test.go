package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HardPulse/mazpan/internal/api/requestctx"
	"github.com/HardPulse/mazpan/internal/cache"
	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/security"
	"github.com/HardPulse/mazpan/internal/service"
	"github.com/HardPulse/mazpan/internal/support/i18n"
)

type fakeAuth struct {
	principals map[string]service.Principal
	calls      int
}

func (f *fakeAuth) Register(context.Context, service.RegisterInput) (*service.UserView, error) {
	return nil, service.ErrForbidden
}

func (f *fakeAuth) Login(context.Context, service.LoginInput) (*service.LoginResult, error) {
	return nil, service.ErrInvalidCredentials
}

func (f *fakeAuth) Verify(_ context.Context, raw string) (*service.Principal, error) {
	f.calls++
	p, ok := f.principals[raw]
	if !ok {
		return nil, service.ErrUnauthorized
	}
	return &p, nil
}

func (f *fakeAuth) EnsureAdmin(context.Context, string, string) (*service.UserView, bool, error) {
	return nil, false, nil
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{principals: map[string]service.Principal{
		"user-token":    {ID: "u1", Username: "alice", Role: repository.RoleUser, Language: "en"},
		"support-token": {ID: "s1", Username: "sam", Role: repository.RoleSupport},
		"admin-token":   {ID: "a1", Username: "root", Role: repository.RoleAdmin},
	}}
}

func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := requestctx.PrincipalFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":   p.ID,
			"lang": requestctx.GetLanguage(r.Context()),
		})
	})
}

func serve(h http.Handler, token string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestGuards(t *testing.T) {
	auth := newFakeAuth()
	tests := []struct {
		name   string
		guard  func(service.AuthService, Translator) func(http.Handler) http.Handler
		token  string
		status int
	}{
		{"user without token", UserGuard, "", http.StatusUnauthorized},
		{"user bad token", UserGuard, "nope", http.StatusUnauthorized},
		{"user ok", UserGuard, "user-token", http.StatusOK},
		{"staff rejects user", StaffGuard, "user-token", http.StatusForbidden},
		{"staff admits support", StaffGuard, "support-token", http.StatusOK},
		{"admin rejects support", AdminGuard, "support-token", http.StatusForbidden},
		{"admin admits admin", AdminGuard, "admin-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(tt.guard(auth, nil)(echoPrincipal()), tt.token)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusOK {
				assert.NotEmpty(t, decode(t, rec)["code"])
			}
		})
	}
}

func TestNestedGuardVerifiesOnce(t *testing.T) {
	auth := newFakeAuth()
	h := UserGuard(auth, nil)(AdminGuard(auth, nil)(echoPrincipal()))

	rec := serve(h, "admin-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, auth.calls)

	rec = serve(h, "user-token")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "error.forbidden", decode(t, rec)["code"])
}

func TestGuardAppliesStoredLanguageUnlessExplicit(t *testing.T) {
	manager, err := i18n.NewManager()
	require.NoError(t, err)
	h := I18n(manager)(UserGuard(newFakeAuth(), manager)(echoPrincipal()))

	rec := serve(h, "user-token")
	assert.Equal(t, "en", decode(t, rec)["lang"])

	rec = serve(h, "user-token", func(r *http.Request) { r.Header.Set("X-I18N-Lang", "ru") })
	assert.Equal(t, "ru", decode(t, rec)["lang"])
}

func TestI18nNegotiation(t *testing.T) {
	manager, err := i18n.NewManager()
	require.NoError(t, err)
	h := I18n(manager)(echoPrincipal())

	tests := []struct {
		name   string
		mutate func(*http.Request)
		want   string
	}{
		{"default", func(*http.Request) {}, "ru"},
		{"accept-language", func(r *http.Request) { r.Header.Set("Accept-Language", "en-US,en;q=0.9") }, "en"},
		{"header wins over accept", func(r *http.Request) {
			r.Header.Set("X-I18N-Lang", "ru")
			r.Header.Set("Accept-Language", "en")
		}, "ru"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "i18next", Value: "en"}) }, "en"},
		{"unsupported header falls back", func(r *http.Request) { r.Header.Set("X-I18N-Lang", "zz") }, "ru"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, "", tt.mutate)
			assert.Equal(t, tt.want, decode(t, rec)["lang"])
		})
	}
}

func TestI18nQueryPersistsCookie(t *testing.T) {
	manager, err := i18n.NewManager()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/x?lang=en", nil)
	rec := httptest.NewRecorder()
	I18n(manager)(echoPrincipal()).ServeHTTP(rec, req)

	assert.Equal(t, "en", decode(t, rec)["lang"])
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "i18next", cookies[0].Name)
	assert.Equal(t, "en", cookies[0].Value)
}

func TestRateLimit(t *testing.T) {
	limiter, err := security.NewRateLimiter(cache.NewStore(cache.Options{Prefix: "mw"}))
	require.NoError(t, err)
	h := RateLimit(limiter, RateLimitConfig{
		Limit:     2,
		Window:    time.Minute,
		SkipPaths: []string{"/api/health"},
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	for i := 0; i < 2; i++ {
		rec := serve(h, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}
	rec := serve(h, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "error.rate_limited", decode(t, rec)["code"])

	rec = serve(h, "", func(r *http.Request) { r.URL.Path = "/api/health" })
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestBodyLimit(t *testing.T) {
	read := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	h := BodyLimit(BodyLimitConfig{MaxBytes: 4})(read)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("abcd")))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("abcdef")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "error.payload_too_large", decode(t, rec)["code"])

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("abcdef"))
	req.ContentLength = -1
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := CORS(CORSConfig{AllowedOrigins: []string{"https://panel.example"}})(ok)

	rec := serve(h, "", func(r *http.Request) {
		r.Method = http.MethodOptions
		r.Header.Set("Origin", "https://panel.example")
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://panel.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	rec = serve(h, "", func(r *http.Request) { r.Header.Set("Origin", "https://evil.example") })
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(CORS(DefaultCORSConfig())(ok), "", func(r *http.Request) { r.Header.Set("Origin", "https://any.example") })
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsMiddleware(t *testing.T) {
	m := NewMetrics(MetricsConfig{}, prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) })
	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {})

	for _, path := range []string{"/items/1", "/items/2", "/api/health"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, promtestutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/items/{id}", "202")))
	assert.Equal(t, 1, promtestutil.CollectAndCount(m.requests))
	assert.Equal(t, 0.0, promtestutil.ToFloat64(m.inFlight))
}

func TestMetricsGuard(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(MetricsGuard("")(ok), "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(MetricsGuard("secret")(ok), "").Code)
	assert.Equal(t, http.StatusOK, serve(MetricsGuard("secret")(ok), "secret").Code)
}

func TestExtractBearer(t *testing.T) {
	assert.Equal(t, "abc", extractBearer("Bearer abc"))
	assert.Equal(t, "abc", extractBearer("bearer  abc "))
	assert.Equal(t, "raw", extractBearer("raw"))
	assert.Empty(t, extractBearer("  "))
}

func TestStructuredLoggerRecordsCaller(t *testing.T) {
	manager, err := i18n.NewManager()
	require.NoError(t, err)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := StructuredLogger(LoggingConfig{Logger: logger, SkipPaths: []string{"/api/health"}})(
		I18n(manager)(UserGuard(newFakeAuth(), manager)(echoPrincipal())),
	)

	rec := serve(h, "user-token")
	require.Equal(t, http.StatusOK, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "u1", entry["user_id"])
	assert.Equal(t, "User", entry["role"])
	assert.Equal(t, "en", entry["lang"])
	assert.EqualValues(t, http.StatusOK, entry["status"])

	buf.Reset()
	rec = serve(h, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	entry = map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "user_id")
	assert.Equal(t, "request rejected", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])

	buf.Reset()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Zero(t, buf.Len())
}
