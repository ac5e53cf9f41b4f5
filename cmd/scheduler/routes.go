package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/muezzin/internal/db"
	statusapi "github.com/Nixie-Tech-LLC/muezzin/internal/http/api/status"
	"github.com/Nixie-Tech-LLC/muezzin/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/muezzin/internal/scheduler"
	"github.com/Nixie-Tech-LLC/muezzin/internal/soundtrack"
)

// RegisterRoutes sets up the operator API
func RegisterRoutes(r *gin.Engine, env Environment, store db.Store, sched *scheduler.Scheduler, zones *soundtrack.Client) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		AllowCredentials: false,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.StaticToken(env.APIToken))
	statusapi.RegisterRoutes(api, store, sched, zones)
}
