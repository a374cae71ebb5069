package grpcx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

const RequestIDMetadataKey = "x-request-id"

type ctxKey int

const ctxKeyRequestID ctxKey = iota

func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

func NewRequestID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
