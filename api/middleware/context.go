package middleware

import "context"

type contextKey string

const ctxScope contextKey = "user_scope"

// ScopeFromContext returns the tenant scope set by the Scope middleware,
// or "" when the request carried none.
func ScopeFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxScope).(string); ok {
		return v
	}
	return ""
}

// WithScope injects the tenant scope into the context for downstream handlers.
func WithScope(ctx context.Context, scope string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxScope, scope)
}
