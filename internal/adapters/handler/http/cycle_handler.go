package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/services"
)

type CycleHandler struct {
	sessionHandler
}

func NewCycleHandler(sessions *services.SessionManager) *CycleHandler {
	return &CycleHandler{sessionHandler: newSessionHandler(sessions)}
}

type createCycleRequest struct {
	Name      string `json:"name" binding:"required"`
	Vision    string `json:"vision"`
	StartDate string `json:"start_date" binding:"required"`
}

type updateCycleRequest struct {
	Name   *string `json:"name"`
	Vision *string `json:"vision"`
}

type setWeekRequest struct {
	Week int `json:"week" binding:"required"`
}

func (h *CycleHandler) RegisterRoutes(router *gin.RouterGroup) {
	cycles := router.Group("/cycles")
	{
		cycles.GET("", h.List)
		cycles.POST("", h.Create)
		cycles.PATCH("/current", h.UpdateCurrent)
		cycles.PUT("/current/week", h.SetWeek)
		cycles.POST("/:id/select", h.Select)
		cycles.POST("/:id/archive", h.Archive)
		cycles.DELETE("/:id", h.Delete)
	}
}

func (h *CycleHandler) List(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cycles":           store.Cycles(),
		"current_cycle_id": store.CurrentCycleID(),
	})
}

// Create godoc
// @Summary  Start a new 12-week cycle and select it
// @Tags     cycles
// @Accept   json
// @Produce  json
// @Success  201 {object} services.Dashboard
// @Failure  400 {object} map[string]string
// @Failure  502 {object} map[string]string
// @Router   /cycles [post]
func (h *CycleHandler) Create(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	var req createCycleRequest
	if !bindJSON(c, &req) {
		return
	}

	_, err := store.CreateCycle(c.Request.Context(), services.CreateCycleInput{
		Name:      req.Name,
		Vision:    req.Vision,
		StartDate: req.StartDate,
	})
	h.respond(c, store, http.StatusCreated, err)
}

func (h *CycleHandler) Select(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	store.SelectCycle(c.Param("id"))
	h.respond(c, store, http.StatusOK, nil)
}

func (h *CycleHandler) Archive(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	h.respond(c, store, http.StatusOK, store.ArchiveCycle(c.Request.Context(), c.Param("id")))
}

func (h *CycleHandler) Delete(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	h.respond(c, store, http.StatusOK, store.DeleteCycle(c.Request.Context(), c.Param("id")))
}

func (h *CycleHandler) UpdateCurrent(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	var req updateCycleRequest
	if !bindJSON(c, &req) {
		return
	}
	err := store.UpdateCycle(c.Request.Context(), domain.CyclePatch{Name: req.Name, Vision: req.Vision})
	h.respond(c, store, http.StatusOK, err)
}

func (h *CycleHandler) SetWeek(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	var req setWeekRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, store, http.StatusOK, store.SetCurrentWeek(c.Request.Context(), req.Week))
}
