// Package actorctx carries per-request identity (acting user, request id) on
// a context.Context so every log line written during a request can name them.
package actorctx

import "context"

type (
	userKey    struct{}
	requestKey struct{}
)

// WithUserID records the acting user on a request context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

func UserIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userKey{}).(string)

	return v, ok && v != ""
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestKey{}, requestID)
}

func RequestIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestKey{}).(string)

	return v, ok && v != ""
}
