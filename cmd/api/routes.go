package main

import (
	"pingboard/internal/web"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// registerRoutes sets up all API endpoints
func (app *App) registerRoutes() {
	// Latency page
	app.router.GET("/", web.IndexHandler(web.PageData{
		Title:      "Ping",
		StartLabel: "Start pinging",
		LivePath:   "/api/ping/live",
	}))

	// Health check endpoints
	app.router.GET("/ping", app.handlePing)

	api := app.router.Group("/api")
	api.GET("/ping", app.handlePing)
	api.GET("/ping/live", app.handleLive)

	// Prometheus metrics
	app.router.GET("/metrics", gin.WrapH(app.metrics.Handler()))

	// Swagger documentation
	app.router.GET("/swagger/*any", func(c *gin.Context) {
		path := c.Param("any")
		if path == "/" {
			c.Redirect(301, "/swagger/index.html")
			return
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler)(c)
	})
}
