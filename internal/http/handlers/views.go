package handlers

import (
	"net/http"

	"github.com/geocoder89/campushub/internal/domain/identity"
	"github.com/geocoder89/campushub/internal/guard"
	"github.com/gin-gonic/gin"
)

// GuardObserver counts guard decisions.
type GuardObserver interface {
	ObserveGuard(action, target string)
}

type ViewHandler struct {
	sessions Sessions
	obs      GuardObserver
}

func NewViewHandler(sessions Sessions, obs GuardObserver) *ViewHandler {
	return &ViewHandler{sessions: sessions, obs: obs}
}

type ViewResponse struct {
	View   string             `json:"view"`
	Path   string             `json:"path"`
	Params map[string]string  `json:"params,omitempty"`
	User   *identity.Identity `json:"user"`
	Nav    []guard.NavItem    `json:"nav"`
}

// Serve runs the route guard for the requested path. It either redirects
// with 302 or describes the view to render.
func (h *ViewHandler) Serve(ctx *gin.Context) {
	store, ok := storeFor(ctx, h.sessions)
	if !ok {
		return
	}

	path := ctx.Request.URL.Path
	user := currentUser(store)
	d := guard.Decide(path, user)

	if d.Action == guard.Redirect {
		h.observe(string(d.Action), d.Target)
		ctx.Header("Cache-Control", "no-store")
		ctx.Redirect(http.StatusFound, d.Target)
		return
	}

	h.observe(string(d.Action), d.View.Name)

	resp := ViewResponse{
		View: d.View.Name,
		Path: path,
		User: user,
		Nav:  guard.NavFor(user, path),
	}
	if len(ctx.Params) > 0 {
		resp.Params = make(map[string]string, len(ctx.Params))
		for _, p := range ctx.Params {
			resp.Params[p.Key] = p.Value
		}
	}

	ctx.Header("Cache-Control", "no-store")
	ctx.JSON(http.StatusOK, resp)
}

func (h *ViewHandler) observe(action, target string) {
	if h.obs != nil {
		h.obs.ObserveGuard(action, target)
	}
}
