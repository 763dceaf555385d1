package cmd

import (
	"context"
	"log"
	"time"

	"github.com/abofield/abofield/config"
	"github.com/abofield/abofield/database"
	"github.com/abofield/abofield/database/repo/images"
	"github.com/abofield/abofield/internal/registry"
	"github.com/spf13/cobra"
)

// seedCmd inserts any missing default catalogue entries and exits.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert missing default images and exit",
	Run: func(cmd *cobra.Command, args []string) {
		config.InitConfig()
		cfg := config.Get()

		db, err := database.NewDB(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to auto migrate database: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		seeder := registry.NewSeeder(images.NewRepository(db))
		inserted, err := seeder.Seed(ctx)
		if err != nil {
			log.Fatalf("Failed to seed default images: %v", err)
		}

		log.Printf("Seeding finished, %d images inserted", inserted)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
