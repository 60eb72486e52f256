package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/campushub/internal/auth"
	"github.com/geocoder89/campushub/internal/domain/identity"
	"github.com/geocoder89/campushub/internal/guard"
	"github.com/geocoder89/campushub/internal/session"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	sessions Sessions
}

func NewAuthHandler(sessions Sessions) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the signed-in user and where the guard sends them.
type AuthResponse struct {
	User     identity.Identity `json:"user"`
	Redirect string            `json:"redirect"`
}

func authResponse(u identity.Identity) AuthResponse {
	return AuthResponse{User: u, Redirect: guard.DefaultDashboard(u.Role)}
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	store, ok := storeFor(ctx, h.sessions)
	if !ok {
		return
	}

	u, err := store.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			RespondUnauthorized(ctx, "invalid_credentials", "Invalid email or password")
			return
		}
		h.respondSignInError(ctx, err, "Could not sign in")
		return
	}

	ctx.JSON(http.StatusOK, authResponse(u))
}

func (h *AuthHandler) Signup(ctx *gin.Context) {
	var req identity.Profile
	if !DecodeJSON(ctx, &req) {
		return
	}

	store, ok := storeFor(ctx, h.sessions)
	if !ok {
		return
	}

	u, err := store.Signup(ctx.Request.Context(), req)
	if err != nil {
		if errors.Is(err, session.ErrInvalidProfile) {
			RespondError(ctx, http.StatusBadRequest, "invalid_profile", "Signup details are incomplete",
				gin.H{"fields": FieldErrors(err)})
			return
		}
		h.respondSignInError(ctx, err, "Could not create account")
		return
	}

	ctx.JSON(http.StatusCreated, authResponse(u))
}

// Google signs in through the demo Google provider.
func (h *AuthHandler) Google(ctx *gin.Context) {
	h.external(ctx, auth.ProviderGoogle)
}

// External signs in through the provider named in the path.
func (h *AuthHandler) External(ctx *gin.Context) {
	h.external(ctx, ctx.Param("provider"))
}

func (h *AuthHandler) external(ctx *gin.Context, provider string) {
	store, ok := storeFor(ctx, h.sessions)
	if !ok {
		return
	}

	u, err := store.ExternalSignIn(ctx.Request.Context(), provider)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownProvider) {
			RespondError(ctx, http.StatusNotFound, "unknown_provider", "Sign-in provider not available", nil)
			return
		}
		h.respondSignInError(ctx, err, "Could not sign in with "+provider)
		return
	}

	ctx.JSON(http.StatusOK, authResponse(u))
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	store, ok := storeFor(ctx, h.sessions)
	if !ok {
		return
	}

	store.Logout(ctx.Request.Context())
	ctx.Status(http.StatusNoContent)
}

// Session reports the device's session state.
func (h *AuthHandler) Session(ctx *gin.Context) {
	store, ok := storeFor(ctx, h.sessions)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, store.Snapshot())
}

func (h *AuthHandler) respondSignInError(ctx *gin.Context, err error, message string) {
	_ = ctx.Error(err)

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		RespondUnavailable(ctx, "Request cancelled")
		return
	}
	RespondInternal(ctx, message)
}
