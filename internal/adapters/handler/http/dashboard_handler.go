package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/services"
)

type DashboardHandler struct {
	sessionHandler
}

func NewDashboardHandler(sessions *services.SessionManager) *DashboardHandler {
	return &DashboardHandler{sessionHandler: newSessionHandler(sessions)}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	dashboard := router.Group("/dashboard")
	{
		dashboard.GET("", h.Get)
		dashboard.POST("/refresh", h.Refresh)
		dashboard.DELETE("/error", h.DismissError)
	}
}

// Get godoc
// @Summary  Dashboard of the selected cycle
// @Tags     dashboard
// @Produce  json
// @Success  200 {object} services.Dashboard
// @Router   /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, store.Dashboard(h.now()))
}

// Refresh reloads every cycle from the gateway.
func (h *DashboardHandler) Refresh(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	h.respond(c, store, http.StatusOK, store.FetchAll(c.Request.Context()))
}

func (h *DashboardHandler) DismissError(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	store.DismissError()
	c.JSON(http.StatusOK, store.Dashboard(h.now()))
}
