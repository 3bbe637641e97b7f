package middleware

import (
	"net/http"
	"strings"

	"github.com/ledgerline/ledgerline-backend/api/responses"
	pkgerrors "github.com/ledgerline/ledgerline-backend/pkg/errors"
	"github.com/ledgerline/ledgerline-backend/pkg/logger"
)

// ScopeHeader carries the tenant key assigned by the upstream gateway.
const ScopeHeader = "X-Ledger-Scope"

// Scope requires the gateway scope header on every request and makes it
// available through ScopeFromContext and the request log fields.
func Scope(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := strings.TrimSpace(r.Header.Get(ScopeHeader))
			if scope == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "scope header missing"))
				return
			}

			ctx := WithScope(r.Context(), scope)
			if logg != nil {
				ctx = logg.WithScope(ctx, scope)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
