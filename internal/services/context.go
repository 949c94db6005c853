package services

import "context"

type ctxKey uint8

const (
	batchIDKey ctxKey = iota
	pathKey
	requestIDKey
)

func withString(ctx context.Context, key ctxKey, v string) context.Context {
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func stringFrom(ctx context.Context, key ctxKey) (string, bool) {
	v, _ := ctx.Value(key).(string)
	return v, v != ""
}

// WithBatchID tags ctx with the batch save it belongs to.
func WithBatchID(ctx context.Context, id string) context.Context {
	return withString(ctx, batchIDKey, id)
}

func BatchIDFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, batchIDKey) }

// WithPath tags ctx with the image file being worked on.
func WithPath(ctx context.Context, path string) context.Context {
	return withString(ctx, pathKey, path)
}

func PathFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, pathKey) }

// WithRequestID tags ctx with the ID of one CLI invocation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, requestIDKey) }
