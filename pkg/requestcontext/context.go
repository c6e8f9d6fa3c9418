// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; services read them without
// importing net/http.
package requestcontext

import (
	"context"
	"time"

	"vigil/pkg/domain"
)

type (
	actorIDKey     struct{}
	roleKey        struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// WithActorID attaches the authenticated actor to the context.
func WithActorID(ctx context.Context, id domain.ActorID) context.Context {
	return context.WithValue(ctx, actorIDKey{}, id)
}

// ActorID returns the authenticated actor, or "" when unauthenticated.
func ActorID(ctx context.Context) domain.ActorID {
	if v, ok := ctx.Value(actorIDKey{}).(domain.ActorID); ok {
		return v
	}
	return ""
}

// WithRole attaches the actor's role to the context.
func WithRole(ctx context.Context, role domain.Role) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// Role returns the actor's role, or "" when unauthenticated.
func Role(ctx context.Context) domain.Role {
	if v, ok := ctx.Value(roleKey{}).(domain.Role); ok {
		return v
	}
	return ""
}

// WithRequestID attaches the correlation ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation ID, or "" when none was set.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithTime pins the request time. Tests use this to make window arithmetic
// deterministic.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now returns the pinned request time, falling back to the wall clock.
func Now(ctx context.Context) time.Time {
	if v, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return v
	}
	return time.Now()
}
