package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/pingcrm/internal/crm"
	"github.com/joshu-sajeev/pingcrm/internal/job"
	"github.com/joshu-sajeev/pingcrm/internal/metrics"
	"github.com/joshu-sajeev/pingcrm/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Dependencies struct {
	Logger         *slog.Logger
	Jobs           job.JobHandlerInterface
	CRM            *crm.Handler
	DB             Pinger
	Metrics        *prometheus.Registry
	RequestTimeout time.Duration
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()

	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.TimeoutMiddleware(timeout))
	r.Use(middleware.ErrorHandler())

	r.GET("/health", func(c *gin.Context) {
		if deps.DB != nil {
			if err := deps.DB.PingContext(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(deps.Metrics)))
	}

	r.GET("/", deps.CRM.Home)
	r.GET("/users", deps.CRM.ListUsers)
	r.GET("/users/:user_id/posts", deps.CRM.ListUserPosts)
	r.GET("/posts", deps.CRM.ListPosts)

	r.GET("/job", deps.Jobs.Queue)

	jobs := r.Group("/jobs")
	{
		jobs.POST("", deps.Jobs.Create)
		jobs.GET("", deps.Jobs.List)
		jobs.GET("/:id", deps.Jobs.Get)
	}

	return r
}
