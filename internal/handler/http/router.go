package http

import (
	"net/http"
	"time"

	middleware_http "shop-crud/internal/middleware/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Product *ProductHandler
	User    *UserHandler
	Health  *HealthHandler
}

// NewRouter wires every route. Unmatched paths and methods answer 404 and a panic answers 500.
func NewRouter(h Handlers) *gin.Engine {
	r := gin.New()

	r.Use(middleware_http.Trace())
	r.Use(gin.CustomRecovery(func(c *gin.Context, rec any) {
		middleware_http.RecordPanic(c, rec)
		writeFail(c, http.StatusInternalServerError, MsgPanic)
	}))
	// Any origin is accepted and reflected back, so credentials can be sent.
	r.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "traceparent"},
		ExposeHeaders:    []string{"X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.NoRoute(func(c *gin.Context) {
		writeFail(c, http.StatusNotFound, MsgPathError)
	})

	h.Health.RegisterRoutes(r)
	h.Product.RegisterRoutes(r)
	h.User.RegisterRoutes(r)

	return r
}
