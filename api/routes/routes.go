package routes

import (
	"context"
	"net/http"

	"github.com/ArowuTest/event-showcase-backend/internal/config"
	"github.com/ArowuTest/event-showcase-backend/internal/handlers"
	"github.com/ArowuTest/event-showcase-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandlerDependencies holds everything the router wires into routes
type HandlerDependencies struct {
	EventHandler *handlers.EventHandler
	AuthHandler  *handlers.AuthHandler
	Authorizer   middleware.TokenAuthorizer

	// UploadDir is served under /uploads when set. Otherwise UploadURL, when
	// set, maps a blob name to the URL clients are redirected to.
	UploadDir string
	UploadURL func(name string) string

	// HealthCheck, when set, must succeed for /api/health to report ok.
	HealthCheck func(ctx context.Context) error
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = cfg.Storage.MaxUploadMB << 20

	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))

	switch {
	case deps.UploadDir != "":
		router.Static("/uploads", deps.UploadDir)
	case deps.UploadURL != nil:
		router.GET("/uploads/:name", func(c *gin.Context) {
			c.Redirect(http.StatusFound, deps.UploadURL(c.Param("name")))
		})
	}

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			if deps.HealthCheck != nil {
				if err := deps.HealthCheck(c.Request.Context()); err != nil {
					log.Error("health check failed", zap.Error(err))
					c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
					return
				}
			}
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		admin := api.Group("/admin")
		{
			admin.POST("/login", deps.AuthHandler.Login)
		}

		events := api.Group("/events")
		{
			events.GET("", deps.EventHandler.ListEvents)
			events.GET("/:id", deps.EventHandler.GetEvent)
		}

		writes := api.Group("/events")
		if cfg.Admin.ProtectWrites {
			writes.Use(middleware.AdminAuth(deps.Authorizer, log))
		}
		{
			writes.POST("", deps.EventHandler.CreateEvent)
			writes.PUT("/:id", deps.EventHandler.UpdateEvent)
			writes.DELETE("/:id", deps.EventHandler.DeleteEvent)

			writes.POST("/:id/gallery", deps.EventHandler.AddGalleryImages)
			writes.DELETE("/:id/gallery/:imgId", deps.EventHandler.DeleteGalleryImage)

			writes.POST("/:id/certificates", deps.EventHandler.AddCertificates)
			writes.PUT("/:id/certificates/:certId", deps.EventHandler.RenameCertificate)
			writes.DELETE("/:id/certificates/:certId", deps.EventHandler.DeleteCertificate)
		}
	}

	return router
}
