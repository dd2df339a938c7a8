package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/services"
)

// TrackingHandler serves habits, weekly scores and lead indicators of the selected cycle.
type TrackingHandler struct {
	sessionHandler
}

func NewTrackingHandler(sessions *services.SessionManager) *TrackingHandler {
	return &TrackingHandler{sessionHandler: newSessionHandler(sessions)}
}

type createHabitRequest struct {
	Name              string `json:"name" binding:"required"`
	TargetDaysPerWeek int    `json:"target_days_per_week"`
}

type updateHabitRequest struct {
	Name              *string `json:"name"`
	TargetDaysPerWeek *int    `json:"target_days_per_week"`
}

type toggleHabitRequest struct {
	Date string `json:"date" binding:"required"`
}

type createIndicatorRequest struct {
	Name   string  `json:"name" binding:"required"`
	Target float64 `json:"target"`
	Actual float64 `json:"actual"`
	Unit   string  `json:"unit"`
}

type updateIndicatorRequest struct {
	Name   *string  `json:"name"`
	Target *float64 `json:"target"`
	Actual *float64 `json:"actual"`
	Unit   *string  `json:"unit"`
}

func (h *TrackingHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.CreateHabit)
		habits.PATCH("/:id", h.UpdateHabit)
		habits.DELETE("/:id", h.DeleteHabit)
		habits.POST("/:id/toggle", h.ToggleHabit)
	}

	scores := router.Group("/scores")
	{
		scores.POST("/:week", h.RecordScore)
		scores.POST("/:week/indicators", h.CreateIndicator)
	}

	indicators := router.Group("/indicators")
	{
		indicators.PATCH("/:id", h.UpdateIndicator)
		indicators.DELETE("/:id", h.DeleteIndicator)
	}
}

func (h *TrackingHandler) CreateHabit(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	var req createHabitRequest
	if !bindJSON(c, &req) {
		return
	}

	_, err := store.AddHabit(c.Request.Context(), services.AddHabitInput{
		Name:              req.Name,
		TargetDaysPerWeek: req.TargetDaysPerWeek,
	})
	h.respond(c, store, http.StatusCreated, err)
}

func (h *TrackingHandler) UpdateHabit(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	var req updateHabitRequest
	if !bindJSON(c, &req) {
		return
	}

	err := store.UpdateHabit(c.Request.Context(), c.Param("id"), domain.HabitPatch{
		Name:              req.Name,
		TargetDaysPerWeek: req.TargetDaysPerWeek,
	})
	h.respond(c, store, http.StatusOK, err)
}

func (h *TrackingHandler) DeleteHabit(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	h.respond(c, store, http.StatusOK, store.DeleteHabit(c.Request.Context(), c.Param("id")))
}

func (h *TrackingHandler) ToggleHabit(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	var req toggleHabitRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respond(c, store, http.StatusOK, store.ToggleHabitCompletion(c.Request.Context(), c.Param("id"), req.Date))
}

func weekParam(c *gin.Context) (int, bool) {
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidWeek.Error()})
		return 0, false
	}
	return week, true
}

// RecordScore godoc
// @Summary  Record the execution score of a week from the current task list
// @Tags     scores
// @Produce  json
// @Param    week path int true "Week number (1-12)"
// @Success  200 {object} services.Dashboard
// @Failure  400 {object} map[string]string
// @Router   /scores/{week} [post]
func (h *TrackingHandler) RecordScore(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	week, ok := weekParam(c)
	if !ok {
		return
	}
	_, err := store.RecordWeeklyScore(c.Request.Context(), week)
	h.respond(c, store, http.StatusOK, err)
}

func (h *TrackingHandler) CreateIndicator(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	week, ok := weekParam(c)
	if !ok {
		return
	}
	var req createIndicatorRequest
	if !bindJSON(c, &req) {
		return
	}

	_, err := store.AddLeadIndicator(c.Request.Context(), week, services.AddLeadIndicatorInput{
		Name:   req.Name,
		Target: req.Target,
		Actual: req.Actual,
		Unit:   req.Unit,
	})
	h.respond(c, store, http.StatusCreated, err)
}

func (h *TrackingHandler) UpdateIndicator(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	var req updateIndicatorRequest
	if !bindJSON(c, &req) {
		return
	}

	err := store.UpdateLeadIndicator(c.Request.Context(), c.Param("id"), domain.LeadIndicatorPatch{
		Name:   req.Name,
		Target: req.Target,
		Actual: req.Actual,
		Unit:   req.Unit,
	})
	h.respond(c, store, http.StatusOK, err)
}

func (h *TrackingHandler) DeleteIndicator(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	h.respond(c, store, http.StatusOK, store.DeleteLeadIndicator(c.Request.Context(), c.Param("id")))
}
