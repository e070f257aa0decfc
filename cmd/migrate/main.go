package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gurkanbulca/grievanceportal/internal/config"
	"github.com/gurkanbulca/grievanceportal/internal/database"
	"github.com/gurkanbulca/grievanceportal/pkg/logger"
)

var databasePath string

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	rootCmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply pending grievance database migrations",
		SilenceUsage: true,
		RunE:         runMigrations,
	}
	rootCmd.Flags().StringVar(&databasePath, "database", "", "SQLite file to migrate (defaults to $DATABASE)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMigrations(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if databasePath != "" {
		cfg.Database.Path = databasePath
	}

	zapLogger, err := logger.NewLogger(cfg.Server.Environment, cfg.Server.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = zapLogger.Sync() }()

	ctx := cmd.Context()

	db, err := database.NewSQLiteDB(ctx, database.Config{
		Path:        cfg.Database.Path,
		BusyTimeout: cfg.Database.BusyTimeout,
	}, zapLogger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, zapLogger); err != nil {
		return err
	}
	zapLogger.Info("Migrations completed", zap.String("path", cfg.Database.Path))
	return nil
}
