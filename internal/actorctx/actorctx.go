// Package actorctx carries the requesting device on a context.Context so
// code below the HTTP layer can tag its work without importing gin.
package actorctx

import "context"

type ctxKey struct{}

func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, deviceID)
}

func DeviceIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKey{}).(string)

	return v, ok && v != ""
}
