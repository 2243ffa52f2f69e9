// Package api exposes the display state over HTTP and WebSocket.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwulff/nightscoutbar-go/internal/logger"
	"github.com/jwulff/nightscoutbar-go/internal/render"
	"github.com/jwulff/nightscoutbar-go/internal/state"
)

const statusOK = "ok"

// StateSource is the read side of the display state. *state.Store implements it.
type StateSource interface {
	Snapshot() state.DisplayState
	Subscribe() (<-chan state.DisplayState, func())
}

// Fetcher triggers an immediate fetch. *poller.Poller implements it.
type Fetcher interface {
	FetchOnce(ctx context.Context) state.DisplayState
}

// Handler wires the HTTP layer to the state store and poller.
type Handler struct {
	states  StateSource
	fetcher Fetcher
	log     *logger.Logger
}

// NewHandler constructs a handler. log may be nil.
func NewHandler(states StateSource, fetcher Fetcher, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{states: states, fetcher: fetcher, log: log}
}

// InitRoutes builds the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)

	router.GET("/health", h.health)

	api := router.Group("/api/v1")
	{
		api.GET("/state", h.getState)
		api.POST("/fetch", h.fetchNow)
	}

	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	h.log.Debugw("http_request",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", c.Writer.Status(),
		"duration", time.Since(start),
	)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, render.NewView(h.states.Snapshot()))
}

// fetchNow is the "test now" action: one fetch outside the schedule.
func (h *Handler) fetchNow(c *gin.Context) {
	if h.fetcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "fetching is not available"})
		return
	}
	// A client hanging up must not turn a good state into a transport error.
	st := h.fetcher.FetchOnce(context.WithoutCancel(c.Request.Context()))
	c.JSON(http.StatusOK, render.NewView(st))
}
