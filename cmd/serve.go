package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abofield/abofield/api/core"
	"github.com/abofield/abofield/config"
	"github.com/abofield/abofield/database"
	"github.com/abofield/abofield/database/repo/accounts"
	"github.com/abofield/abofield/database/repo/contacts"
	"github.com/abofield/abofield/database/repo/images"
	"github.com/abofield/abofield/database/repo/settings"
	"github.com/abofield/abofield/internal/auth"
	"github.com/abofield/abofield/internal/registry"
	"github.com/abofield/abofield/storage"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()

	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	db, err := database.NewDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	accountsRepo := accounts.NewRepository(db)
	devicesRepo := accounts.NewDeviceRepository(db)
	imagesRepo := images.NewRepository(db)
	contactsRepo := contacts.NewRepository(db)
	settingsRepo := settings.NewRepository(db)

	if password, err := accountsRepo.CreateDefaultAdminUser(); err != nil {
		log.Printf("Failed to create default admin user: %v", err)
	} else if password != "" {
		log.Printf("Created default admin user, initial password: %s", password)
	}

	if cfg.AuthAllowAllAdmins {
		log.Println("WARNING: auth_allow_all_admins is enabled, every authenticated user has admin access")
	}

	jwtService, err := auth.NewJWTService(cfg.JwtSecret, cfg.JwtExpiresIn, cfg.JwtRefreshExpiresIn)
	if err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}
	loginService := auth.NewLoginService(accountsRepo, devicesRepo, jwtService)

	backend := config.ResolveBackend(cfg)

	var reg registry.Registry
	var store storage.Provider
	var reconciler *registry.Reconciler

	if backend.Mode == config.ModeLive {
		factory, err := storage.NewFactory(backend)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		store = factory.GetDefault()
		reg = registry.NewService(imagesRepo, store, backend.Bucket)

		seeder := registry.NewSeeder(imagesRepo)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := seeder.EnsureSeeded(ctx); err != nil {
			log.Printf("Failed to seed default images: %v", err)
		}
		cancel()

		if cfg.ReconcileEnabled {
			reconciler = registry.NewReconciler(imagesRepo, store, cfg.ReconcileInterval)
			reconciler.Start()
		}
	} else {
		log.Println("Running in demo mode: image catalogue is read-only")
		reg = registry.NewDemoRegistry()
	}

	server := core.NewServer(cfg, core.Deps{
		DB:           db,
		JWTService:   jwtService,
		LoginService: loginService,
		Registry:     reg,
		Storage:      store,
		ContactsRepo: contactsRepo,
		SettingsRepo: settingsRepo,
		Backend:      backend,
		OverridePath: config.DefaultOverridePath,
	})

	go func() {
		if err := server.Run(); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Drop stale refresh tokens once a day.
	stopSessionCleanup := make(chan struct{})
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := devicesRepo.DeleteExpired(); err != nil {
					log.Printf("Failed to delete expired sessions: %v", err)
				} else if n > 0 {
					log.Printf("Deleted %d expired sessions", n)
				}
			case <-stopSessionCleanup:
				return
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	close(stopSessionCleanup)
	if reconciler != nil {
		reconciler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited successfully")
}
