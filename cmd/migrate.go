package cmd

import (
	"log"

	"github.com/abofield/abofield/config"
	"github.com/abofield/abofield/database"
	"github.com/abofield/abofield/database/repo/accounts"
	"github.com/spf13/cobra"
)

// migrateCmd runs the schema migration and exits.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
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

		if password, err := accounts.NewRepository(db).CreateDefaultAdminUser(); err != nil {
			log.Printf("Failed to create default admin user: %v", err)
		} else if password != "" {
			log.Printf("Created default admin user, initial password: %s", password)
		}

		log.Println("Database migration completed")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
