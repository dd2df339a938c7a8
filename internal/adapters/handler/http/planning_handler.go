package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/services"
)

// PlanningHandler serves goals, weekly tasks and daily actions of the selected cycle.
type PlanningHandler struct {
	sessionHandler
}

func NewPlanningHandler(sessions *services.SessionManager) *PlanningHandler {
	return &PlanningHandler{sessionHandler: newSessionHandler(sessions)}
}

type createGoalRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	TargetDate  *string `json:"target_date"`
	Progress    int     `json:"progress"`
}

type updateGoalRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	TargetDate  *string `json:"target_date"`
	Progress    *int    `json:"progress"`
}

type createTaskRequest struct {
	Title   string  `json:"title" binding:"required"`
	GoalID  *string `json:"goal_id"`
	DueDate *string `json:"due_date"`
}

type updateTaskRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
	DueDate   *string `json:"due_date"`
	GoalID    *string `json:"goal_id"`
}

type createActionRequest struct {
	Title    string `json:"title" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Priority string `json:"priority"`
}

type updateActionRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
	Date      *string `json:"date"`
	Priority  *string `json:"priority"`
}

func (h *PlanningHandler) RegisterRoutes(router *gin.RouterGroup) {
	goals := router.Group("/goals")
	{
		goals.POST("", h.CreateGoal)
		goals.PATCH("/:id", h.UpdateGoal)
		goals.DELETE("/:id", h.DeleteGoal)
	}

	tasks := router.Group("/tasks")
	{
		tasks.POST("", h.CreateTask)
		tasks.PATCH("/:id", h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)
		tasks.POST("/:id/toggle", h.ToggleTask)
	}

	actions := router.Group("/actions")
	{
		actions.POST("", h.CreateAction)
		actions.PATCH("/:id", h.UpdateAction)
		actions.DELETE("/:id", h.DeleteAction)
		actions.POST("/:id/toggle", h.ToggleAction)
	}
}

func (h *PlanningHandler) CreateGoal(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	var req createGoalRequest
	if !bindJSON(c, &req) {
		return
	}

	_, err := store.AddGoal(c.Request.Context(), services.AddGoalInput{
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  req.TargetDate,
		Progress:    req.Progress,
	})
	h.respond(c, store, http.StatusCreated, err)
}

func (h *PlanningHandler) UpdateGoal(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	var req updateGoalRequest
	if !bindJSON(c, &req) {
		return
	}

	err := store.UpdateGoal(c.Request.Context(), c.Param("id"), domain.GoalPatch{
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  req.TargetDate,
		Progress:    req.Progress,
	})
	h.respond(c, store, http.StatusOK, err)
}

func (h *PlanningHandler) DeleteGoal(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	h.respond(c, store, http.StatusOK, store.DeleteGoal(c.Request.Context(), c.Param("id")))
}

func (h *PlanningHandler) CreateTask(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	var req createTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	_, err := store.AddWeeklyTask(c.Request.Context(), services.AddWeeklyTaskInput{
		Title:   req.Title,
		GoalID:  req.GoalID,
		DueDate: req.DueDate,
	})
	h.respond(c, store, http.StatusCreated, err)
}

func (h *PlanningHandler) UpdateTask(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	var req updateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	err := store.UpdateWeeklyTask(c.Request.Context(), c.Param("id"), domain.WeeklyTaskPatch{
		Title:     req.Title,
		Completed: req.Completed,
		DueDate:   req.DueDate,
		GoalID:    req.GoalID,
	})
	h.respond(c, store, http.StatusOK, err)
}

func (h *PlanningHandler) DeleteTask(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	h.respond(c, store, http.StatusOK, store.DeleteWeeklyTask(c.Request.Context(), c.Param("id")))
}

func (h *PlanningHandler) ToggleTask(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	h.respond(c, store, http.StatusOK, store.ToggleWeeklyTask(c.Request.Context(), c.Param("id")))
}

func (h *PlanningHandler) CreateAction(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	var req createActionRequest
	if !bindJSON(c, &req) {
		return
	}

	_, err := store.AddDailyAction(c.Request.Context(), services.AddDailyActionInput{
		Title:    req.Title,
		Date:     req.Date,
		Priority: req.Priority,
	})
	h.respond(c, store, http.StatusCreated, err)
}

func (h *PlanningHandler) UpdateAction(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	var req updateActionRequest
	if !bindJSON(c, &req) {
		return
	}

	err := store.UpdateDailyAction(c.Request.Context(), c.Param("id"), domain.DailyActionPatch{
		Title:     req.Title,
		Completed: req.Completed,
		Date:      req.Date,
		Priority:  req.Priority,
	})
	h.respond(c, store, http.StatusOK, err)
}

func (h *PlanningHandler) DeleteAction(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	h.respond(c, store, http.StatusOK, store.DeleteDailyAction(c.Request.Context(), c.Param("id")))
}

func (h *PlanningHandler) ToggleAction(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	h.respond(c, store, http.StatusOK, store.ToggleDailyAction(c.Request.Context(), c.Param("id")))
}
