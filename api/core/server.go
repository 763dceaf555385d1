package core

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/abofield/abofield/api/middleware"
	"github.com/abofield/abofield/config"
	"github.com/abofield/abofield/database/repo/contacts"
	"github.com/abofield/abofield/database/repo/settings"
	"github.com/abofield/abofield/internal/auth"
	"github.com/abofield/abofield/internal/registry"
	"github.com/abofield/abofield/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Deps bundles everything the HTTP layer needs.
type Deps struct {
	DB           *gorm.DB
	JWTService   *auth.JWTService
	LoginService *auth.LoginService
	Registry     registry.Registry
	Storage      storage.Provider // nil in demo mode
	ContactsRepo *contacts.Repository
	SettingsRepo *settings.Repository
	Backend      config.BackendSettings
	OverridePath string
}

// Server is the HTTP front of the service.
type Server struct {
	cfg        *config.Config
	engine     *gin.Engine
	httpServer *http.Server
	cleanup    func()
}

// NewServer builds the gin engine, registers all routes and wraps it in an
// http.Server with sane timeouts.
func NewServer(cfg *config.Config, deps Deps) *Server {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if config.IsDevelopment() {
		engine.Use(gin.Logger())
	}

	// Behind a reverse proxy the client IP comes from headers we choose to
	// trust; by default trust nothing.
	if err := engine.SetTrustedProxies(nil); err != nil {
		log.Printf("Failed to clear trusted proxies: %v", err)
	}

	engine.MaxMultipartMemory = int64(cfg.UploadMaxSizeMB) << 20

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.ServerDomain != "" {
		corsConfig.AllowOrigins = []string{cfg.ServerDomain}
	} else {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	engine.Use(cors.New(corsConfig))

	authLimiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitAuthRPS), cfg.RateLimitAuthBurst)
	publicLimiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitAPIRPS), cfg.RateLimitAPIBurst)

	expireTime := cfg.RateLimitExpireTime
	if expireTime <= 0 {
		expireTime = 10 * time.Minute
	}
	stopCleanup := make(chan struct{})
	go func() {
		ticker := time.NewTicker(expireTime)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				authLimiter.CleanupStale(expireTime)
				publicLimiter.CleanupStale(expireTime)
			case <-stopCleanup:
				return
			}
		}
	}()

	s := &Server{
		cfg:     cfg,
		engine:  engine,
		cleanup: func() { close(stopCleanup) },
	}

	registerRoutes(engine, cfg, deps, authLimiter, publicLimiter)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return s
}

// Run starts serving and blocks until the listener fails or is shut down.
func (s *Server) Run() error {
	log.Printf("Server listening on %s", s.cfg.Addr())
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cleanup()
	return s.httpServer.Shutdown(ctx)
}
