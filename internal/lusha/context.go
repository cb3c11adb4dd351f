package lusha

import "context"

type requestIDKey struct{}

// WithRequestID returns a context whose outbound provider calls carry id as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext extracts the request identifier if available.
func RequestIDFromContext(ctx context.Context) string {
	if val, ok := ctx.Value(requestIDKey{}).(string); ok {
		return val
	}
	return ""
}
