package handlers

import (
	"coke_oven/internal/logger"
	"coke_oven/internal/metrics"
	"coke_oven/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

func (h *Handler) logInfo(msg string, kv ...interface{}) {
	if h.log != nil {
		h.log.Infow(msg, kv...)
	}
}

func (h *Handler) logError(msg string, kv ...interface{}) {
	if h.log != nil {
		h.log.Errorw(msg, kv...)
	}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestIDMiddleware)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Overview stream (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.operatorAuth)
	{
		h.registerIngestRoutes(api)
		h.registerQueryRoutes(api)
	}
}

func (h *Handler) registerIngestRoutes(api *gin.RouterGroup) {
	// Body example: {"oven":1,"time":"2025-06-18 08:00","machine_side":1350.5,"coke_side":1362}
	api.POST("/temperatures", h.recordTemperature)
	// Body example: {"oven":1,"chamber":"12#","type":"PUSH","time":"2025-06-19 12:45"}
	api.POST("/operations", h.recordOperation)
}

func (h *Handler) registerQueryRoutes(api *gin.RouterGroup) {
	api.GET("/temperatures", h.listTemperatures)
	api.GET("/operations", h.listOperations)
	api.GET("/cycles", h.listCycles)
	api.GET("/overview", h.overview)
}
