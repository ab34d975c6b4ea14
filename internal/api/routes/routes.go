package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/maasin/byahenow/internal/api/handlers"
	"github.com/maasin/byahenow/pkg/metrics"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// SetupRoutes configures all API routes. auth guards the routes that need
// a caller identity. nrApp and m may be nil.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, auth gin.HandlerFunc, nrApp *newrelic.Application, m *metrics.Metrics) {
	// Add New Relic middleware if enabled
	if nrApp != nil {
		r.Use(nrgin.Middleware(nrApp))
	}
	if m != nil {
		r.Use(m.GinMiddleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public reads
	r.GET("/drivers", h.ListDrivers)
	r.GET("/fares", h.GetFares)

	// Accounts
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)

	if h.Hub != nil {
		r.GET("/ws", h.HandleWebSocket)
	}

	authed := r.Group("", auth)
	{
		authed.POST("/driver/update", h.PublishStatus)
		authed.POST("/feedback", h.SubmitFeedback)
		authed.GET("/profile", h.GetProfile)
		authed.PUT("/profile", h.UpdateProfile)
	}
}

// CORS wraps the engine so browsers on the allowed origins can call the API
func CORS(h http.Handler, origins, methods, headers []string) http.Handler {
	return gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(origins),
		gorillahandlers.AllowedMethods(methods),
		gorillahandlers.AllowedHeaders(headers),
	)(h)
}
