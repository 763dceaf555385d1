package core

import (
	authhandler "github.com/abofield/abofield/api/handler/auth"
	contacthandler "github.com/abofield/abofield/api/handler/contact"
	imageshandler "github.com/abofield/abofield/api/handler/images"
	settingshandler "github.com/abofield/abofield/api/handler/settings"
	"github.com/abofield/abofield/api/middleware"
	"github.com/abofield/abofield/config"
	"github.com/gin-gonic/gin"
)

func registerRoutes(engine *gin.Engine, cfg *config.Config, deps Deps, authLimiter, publicLimiter *middleware.IPRateLimiter) {
	imagesH := imageshandler.NewHandler(deps.Registry)
	authH := authhandler.NewHandler(deps.LoginService)
	contactH := contacthandler.NewHandler(deps.ContactsRepo)
	settingsH := settingshandler.NewHandler(deps.SettingsRepo, deps.OverridePath, deps.Backend)
	healthH := newHealthHandler(deps.DB, deps.Storage, deps.Registry.Mode())

	engine.GET("/health", healthH.Health)
	engine.GET("/version", healthH.Version)

	// Public image resolution and, with a local backend, the blobs
	// themselves.
	engine.GET("/images/:id", publicLimiter.Middleware(), imagesH.Resolve)
	if deps.Backend.StorageType == "local" && deps.Backend.LocalPath != "" {
		engine.Static("/files", deps.Backend.LocalPath)
	}

	api := engine.Group("/api")
	{
		authGroup := api.Group("/auth", authLimiter.Middleware())
		{
			authGroup.POST("/login", authH.Login)
			authGroup.POST("/register", authH.Register)
			authGroup.POST("/refresh", authH.Refresh)
			authGroup.POST("/logout", authH.Logout)
		}

		public := api.Group("", publicLimiter.Middleware())
		{
			public.POST("/contact", contactH.SubmitContact)
			public.POST("/brochure", contactH.RequestBrochure)
		}

		v1 := api.Group("/v1", middleware.JWTAuth(deps.JWTService))
		{
			v1.GET("/session", authH.Session)

			admin := v1.Group("", middleware.RequireAdmin(cfg.AuthAllowAllAdmins))
			{
				admin.GET("/images", imagesH.List)
				admin.POST("/images/upload", imagesH.Upload)
				admin.POST("/images/external", imagesH.AddExternal)
				admin.PUT("/images/:id", imagesH.Update)
				admin.DELETE("/images/:id", imagesH.Delete)
				admin.PUT("/images/:id/usage", imagesH.UpdateUsage)

				admin.GET("/admin/messages", contactH.ListMessages)
				admin.GET("/admin/brochure-requests", contactH.ListBrochureRequests)

				admin.GET("/admin/settings", settingsH.List)
				admin.PUT("/admin/settings", settingsH.Set)
				admin.GET("/admin/backend", settingsH.Backend)
				admin.PUT("/admin/backend/override", settingsH.SetBackendOverride)
				admin.DELETE("/admin/backend/override", settingsH.ClearBackendOverride)
			}
		}
	}
}
