package handlers

import (
	"net/http"

	"mpihole/internal/logger"
	"mpihole/internal/notify"
	"mpihole/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Subscriber is implemented by notify.Hub.
type Subscriber interface {
	Subscribe() (<-chan notify.Message, func())
}

// Options carries the optional pieces of the HTTP layer.
type Options struct {
	StaticDir string       // serves index.html and /static; the embedded page when empty
	Metrics   http.Handler // mounted on /metrics when set
	Events    Subscriber   // pushes toggles and status snapshots to /ws clients
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	opts     Options
}

// NewHandler builds the HTTP handlers over services.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	return &Handler{services: services, log: log, opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)
	if h.opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.opts.Metrics))
	}

	// Control page and the endpoints its buttons call
	h.registerControlRoutes(router)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerControlRoutes(r *gin.Engine) {
	r.GET("/", h.index)
	r.GET("/static/*filepath", h.static)
	r.GET("/enable", h.enable)
	r.GET("/disable", h.disable)
	r.GET("/disable/:secs", h.disable)
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		api.GET("/servers/status", h.getStatus)
		api.POST("/servers/refresh", h.refreshStatus)
		api.GET("/events", h.getEvents)
	}
}
