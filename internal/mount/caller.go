package mount

import (
	"context"

	"github.com/kvfsfuse/kvfsfuse/internal/permission"
)

type callerContextKey struct{}

// WithCaller attaches the requesting user's identity to ctx. cmd/mount.go
// does not call it, so requests arriving through the FUSE server carry no
// caller and are checked as the mount's default owner (see callerOf).
func WithCaller(ctx context.Context, u permission.User) context.Context {
	return context.WithValue(ctx, callerContextKey{}, u)
}

func userFromContext(ctx context.Context) (permission.User, bool) {
	u, ok := ctx.Value(callerContextKey{}).(permission.User)
	return u, ok
}
