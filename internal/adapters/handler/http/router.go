package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/comitanigiacomo/twelve-week-sync/docs"
	"github.com/comitanigiacomo/twelve-week-sync/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/services"
)

type RouterDependencies struct {
	DashboardHandler *DashboardHandler
	CycleHandler     *CycleHandler
	PlanningHandler  *PlanningHandler
	TrackingHandler  *TrackingHandler
	TokenService     *services.TokenService
	DB               *sqlx.DB
	Redis            *redis.Client
	RateLimit        int
	RateWindow       time.Duration
	StartTime        time.Time
}

// NewHandlers builds every handler over one session manager.
func NewHandlers(sessions *services.SessionManager) (*DashboardHandler, *CycleHandler, *PlanningHandler, *TrackingHandler) {
	return NewDashboardHandler(sessions), NewCycleHandler(sessions), NewPlanningHandler(sessions), NewTrackingHandler(sessions)
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, PATCH, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		dbStatus := "disabled"
		if deps.DB != nil {
			dbStatus = "connected"
			if err := deps.DB.PingContext(c.Request.Context()); err != nil {
				dbStatus = "unreachable"
			}
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if deps.Redis.Ping(c.Request.Context()).Err() != nil {
				redisStatus = "unreachable"
			}
		}

		statusCode := http.StatusOK
		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":   "ok",
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")

	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenService))
	if deps.Redis != nil && deps.RateLimit > 0 {
		protected.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit, deps.RateWindow))
	}
	{
		deps.DashboardHandler.RegisterRoutes(protected)
		deps.CycleHandler.RegisterRoutes(protected)
		deps.PlanningHandler.RegisterRoutes(protected)
		deps.TrackingHandler.RegisterRoutes(protected)
	}

	return router
}
