package handlers

import (
	"context"

	"github.com/geocoder89/campushub/internal/domain/identity"
	"github.com/geocoder89/campushub/internal/http/middlewares"
	"github.com/geocoder89/campushub/internal/session"
	"github.com/gin-gonic/gin"
)

// SessionStore is the part of a device's session the handlers use.
type SessionStore interface {
	Login(ctx context.Context, email, password string) (identity.Identity, error)
	Signup(ctx context.Context, p identity.Profile) (identity.Identity, error)
	ExternalSignIn(ctx context.Context, provider string) (identity.Identity, error)
	Logout(ctx context.Context)
	Current() (identity.Identity, bool)
	Snapshot() session.Snapshot
}

// Sessions hands out the store for a device.
type Sessions interface {
	For(ctx context.Context, deviceID string) SessionStore
}

type managerSessions struct {
	m *session.Manager
}

// ManagerSessions serves stores from a session.Manager.
func ManagerSessions(m *session.Manager) Sessions {
	return managerSessions{m: m}
}

func (s managerSessions) For(ctx context.Context, deviceID string) SessionStore {
	return s.m.Store(ctx, deviceID)
}

// storeFor resolves the calling device's store, answering 500 itself when
// the device middleware did not run.
func storeFor(ctx *gin.Context, sessions Sessions) (SessionStore, bool) {
	deviceID, ok := middlewares.DeviceIDFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Missing device context")
		return nil, false
	}
	return sessions.For(ctx.Request.Context(), deviceID), true
}

func currentUser(store SessionStore) *identity.Identity {
	u, ok := store.Current()
	if !ok {
		return nil
	}
	return &u
}
