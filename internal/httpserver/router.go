package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"habitledger/internal/handler"
)

// Pinger is anything /readyz should check (pgxpool, redis client wrapper).
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Deps struct {
	Progress  *handler.ProgressHandler
	JWTSecret string
	Logger    *zap.Logger
	// Checks are run by /readyz; nil entries are skipped.
	Checks map[string]Pinger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), TraceMiddleware(), LoggingMiddleware(d.Logger))

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		for name, check := range d.Checks {
			if check == nil {
				continue
			}
			if err := check.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": name + "_not_ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/progress")
	api.Use(AuthMiddleware(d.JWTSecret))
	{
		api.POST("/toggle", d.Progress.Toggle)
		api.GET("/completions", d.Progress.Completions)
		api.GET("/stats", d.Progress.Stats)
	}

	return r
}
