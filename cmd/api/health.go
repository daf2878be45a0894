package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PingResponse represents the response for the ping endpoint
type PingResponse struct {
	Message string `json:"message" example:"pong"` // Response message
}

// handlePing godoc
// @Summary Ping
// @Description Lightweight acknowledgement used to measure round trip latency
// @Tags health
// @Produce json
// @Success 200 {object} PingResponse
// @Router /api/ping [get]
// @Router /ping [get]
func (app *App) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{
		Message: "pong",
	})
}

// handleLive godoc
// @Summary Live latency session
// @Description Upgrades to a WebSocket. Send {"type":"start"} to begin sampling; the server sends ping frames the page echoes as pong, then pushes trigger and render messages until the socket closes.
// @Tags live
// @Success 101 "Switching Protocols"
// @Failure 400 "Bad Request"
// @Router /api/ping/live [get]
func (app *App) handleLive(c *gin.Context) {
	app.live.ServeHTTP(c.Writer, c.Request)
}
