package httpx

import (
	"context"
	"net/http"
)

type contextKey string

const (
	adminIDKey   contextKey = "adminID"
	tokenIDKey   contextKey = "tokenID"
	requestIDKey contextKey = "requestID"
)

// AdminIDFrom retrieves the authenticated administrator id from the request
// context. Zero means the request is anonymous.
func AdminIDFrom(r *http.Request) int64 {
	if v, ok := r.Context().Value(adminIDKey).(int64); ok {
		return v
	}
	return 0
}

// TokenIDFrom returns the jti of the session token that authenticated the request.
func TokenIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(tokenIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithAdmin returns a new context with the administrator id and token jti.
func ContextWithAdmin(ctx context.Context, adminID int64, jti string) context.Context {
	ctx = context.WithValue(ctx, adminIDKey, adminID)
	return context.WithValue(ctx, tokenIDKey, jti)
}

func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}
