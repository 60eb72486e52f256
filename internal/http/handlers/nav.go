package handlers

import (
	"net/http"

	"github.com/geocoder89/campushub/internal/domain/identity"
	"github.com/geocoder89/campushub/internal/guard"
	"github.com/gin-gonic/gin"
)

type NavResponse struct {
	Role      identity.Role   `json:"role,omitempty"`
	Dashboard string          `json:"dashboard,omitempty"`
	Items     []guard.NavItem `json:"items"`
}

type NavHandler struct {
	sessions Sessions
}

func NewNavHandler(sessions Sessions) *NavHandler {
	return &NavHandler{sessions: sessions}
}

// Nav returns the menu for the device's current identity. The optional
// "path" query marks the active item.
func (h *NavHandler) Nav(ctx *gin.Context) {
	store, ok := storeFor(ctx, h.sessions)
	if !ok {
		return
	}

	user := currentUser(store)
	resp := NavResponse{Items: guard.NavFor(user, ctx.Query("path"))}
	if user != nil {
		resp.Role = user.Role
		resp.Dashboard = guard.DefaultDashboard(user.Role)
	}

	RespondJSONWithETag(ctx, http.StatusOK, resp)
}
