package http

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/twelve-week-sync/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/services"
)

// sessionHandler resolves the caller's cycle store and renders the dashboard after mutations.
type sessionHandler struct {
	sessions *services.SessionManager
	now      func() time.Time
}

func newSessionHandler(sessions *services.SessionManager) sessionHandler {
	return sessionHandler{sessions: sessions, now: time.Now}
}

func (h *sessionHandler) store(c *gin.Context) (*services.CycleStore, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return nil, false
	}

	store, err := h.sessions.Session(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[HTTP] Failed to load cycles for %s: %v", userID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return nil, false
	}
	return store, true
}

// respond writes the refreshed dashboard on success.
func (h *sessionHandler) respond(c *gin.Context, store *services.CycleStore, status int, err error) {
	if err != nil {
		writeError(c, store, err)
		return
	}
	c.JSON(status, store.Dashboard(h.now()))
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
