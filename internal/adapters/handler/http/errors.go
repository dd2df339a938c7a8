package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/services"
)

var badRequestErrors = []error{
	domain.ErrCycleNameEmpty,
	domain.ErrCycleNameTooLong,
	domain.ErrInvalidStartDate,
	domain.ErrInvalidCycleStatus,
	domain.ErrGoalTitleEmpty,
	domain.ErrGoalTitleTooLong,
	domain.ErrInvalidProgress,
	domain.ErrInvalidDate,
	domain.ErrTaskTitleEmpty,
	domain.ErrTaskTitleTooLong,
	domain.ErrActionTitleEmpty,
	domain.ErrActionTitleTooLong,
	domain.ErrInvalidPriority,
	domain.ErrHabitNameEmpty,
	domain.ErrHabitNameTooLong,
	domain.ErrInvalidTargetDays,
	domain.ErrInvalidWeek,
	domain.ErrIndicatorNameEmpty,
	domain.ErrIndicatorNameTooLong,
	domain.ErrInvalidTaskCounts,
}

var notFoundErrors = []error{
	domain.ErrCycleNotFound,
	domain.ErrGoalNotFound,
	domain.ErrTaskNotFound,
	domain.ErrActionNotFound,
	domain.ErrHabitNotFound,
	domain.ErrScoreNotFound,
	domain.ErrIndicatorNotFound,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeError maps store errors to statuses. Anything unrecognised is a remote failure and
// answers with the message held in the store's error slot.
func writeError(c *gin.Context, store *services.CycleStore, err error) {
	switch {
	case isAny(err, badRequestErrors):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNoCurrentCycle), errors.Is(err, domain.ErrToggleConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case isAny(err, notFoundErrors):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		msg := err.Error()
		if store != nil && store.LastError() != "" {
			msg = store.LastError()
		}
		log.Printf("[HTTP] Remote failure: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": msg})
	}
}
