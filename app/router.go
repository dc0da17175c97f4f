package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter builds the shared HTTP router for both local and Lambda execution.
func NewRouter(h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(h.log))
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", h.Health)

	api := router.Group("/api")
	api.POST("/move", h.BestMove)
	api.POST("/evaluate", h.Evaluate)
	api.POST("/games", h.NewGame)
	api.GET("/games/:id", h.GetGame)
	api.POST("/games/:id/moves", h.PlayMove)
	api.POST("/games/:id/engine-move", h.EngineMove)
	api.POST("/jobs", h.CreateJob)
	api.GET("/jobs/:id", h.GetJob)

	return router
}

// RequestLogger writes one zerolog line per request in place of gin's text logger.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		if status >= 500 {
			ev = log.Error()
		} else if status >= 400 {
			ev = log.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
