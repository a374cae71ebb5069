package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/d-okonkwo/slotly/libs/auth"
)

func TenantIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyTenantID).(string)
	return v
}

func ContextWithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ctxKeyTenantID, tenantID)
}

// WithTenantAuth guards tenant-scoped routes: it requires a bearer token whose
// tenant_id claim matches the X-Tenant-Id header (or fills it in when the
// header is absent). Public client routes are not behind this middleware.
func WithTenantAuth(secret string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(raw, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			claims, err := auth.ParseAndVerifyHS256(strings.TrimPrefix(raw, "Bearer "), secret)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if claims.TenantID == "" {
				http.Error(w, "token missing tenant", http.StatusForbidden)
				return
			}
			if hdr := strings.TrimSpace(r.Header.Get("X-Tenant-Id")); hdr != "" && hdr != claims.TenantID {
				http.Error(w, "tenant mismatch", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithTenantID(r.Context(), claims.TenantID)))
		})
	}
}
