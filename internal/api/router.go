package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Wang-tianhao/vibrant-accounts/jwtauth"
)

// RouterConfig carries the collaborators of NewRouter.
type RouterConfig struct {
	Handler        *Handler
	Gate           *jwtauth.Gate
	Logger         zerolog.Logger
	RequestTimeout time.Duration
}

// NewRouter builds the gin engine with every route and middleware.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(
		Recovery(cfg.Logger),
		RequestID(),
		RequestLogger(cfg.Logger),
		Timeout(cfg.RequestTimeout),
		BodySizeLimit(MaxBodySize),
	)

	r.GET("/health", cfg.Handler.Health)
	r.POST("/user", cfg.Handler.Register)
	r.POST("/auth/token", cfg.Handler.Token)

	protected := r.Group("/", cfg.Gate.Gin())
	protected.GET("/users", cfg.Handler.List)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorPayload{Reason: "Not found"})
	})

	return r
}
