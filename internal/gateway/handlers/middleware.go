package handlers

import (
	"context"
	"net/http"
)

type contextKey string

const tenantContextKey contextKey = "tenant_id"

// TenantHeader carries the caller's tenant identifier. Authentication is
// handled upstream at the edge proxy; the gateway trusts this header.
const TenantHeader = "X-Tenant-ID"

// TenantMiddleware extracts the tenant id and rejects requests without one.
func TenantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get(TenantHeader)
		if tenantID == "" {
			http.Error(w, "missing "+TenantHeader+" header", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), tenantContextKey, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TenantFromContext returns the tenant id set by TenantMiddleware.
func TenantFromContext(ctx context.Context) (string, bool) {
	tenantID, ok := ctx.Value(tenantContextKey).(string)
	return tenantID, ok
}
