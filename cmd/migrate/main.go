package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/config"
	"github.com/sean-rowe/city-explorer-service/internal/infrastructure/database"
)

func main() {
	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var (
		action  = flag.String("action", "up", "Migration action: up, down, version, force")
		version = flag.Uint("version", 0, "Target version for version or force")
		dbHost  = flag.String("host", cfg.Database.Host, "Database host")
		dbPort  = flag.Int("port", cfg.Database.Port, "Database port")
		dbUser  = flag.String("user", cfg.Database.User, "Database user")
		dbPass  = flag.String("password", cfg.Database.Password, "Database password")
		dbName  = flag.String("database", cfg.Database.Database, "Database name")
		dbSSL   = flag.String("sslmode", cfg.Database.SSLMode, "SSL mode")
	)

	flag.Parse()

	logger, err := zap.NewProduction()

	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	db, err := database.OpenSQL(database.Config{
		Host:     *dbHost,
		Port:     *dbPort,
		User:     *dbUser,
		Password: *dbPass,
		Database: *dbName,
		SSLMode:  *dbSSL,
	})

	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	switch *action {
	case "up":
		if err := database.RunMigrations(db, logger); err != nil {
			logger.Fatal("Migration failed", zap.Error(err))
		}

		logger.Info("Migrations completed successfully")

	case "down":
		if err := database.MigrateDown(db, logger); err != nil {
			logger.Fatal("Rollback failed", zap.Error(err))
		}

		logger.Info("Rollback completed successfully")

	case "version":
		if *version == 0 {
			logger.Fatal("Version must be specified with -version flag")
		}

		if err := database.MigrateToVersion(db, *version, logger); err != nil {
			logger.Fatal("Migration to version failed",
				zap.Uint("version", *version),
				zap.Error(err))
		}

		logger.Info("Migration to version completed", zap.Uint("version", *version))

	case "force":
		if *version == 0 {
			logger.Fatal("Version must be specified with -version flag")
		}

		if err := database.ForceVersion(db, int(*version), logger); err != nil {
			logger.Fatal("Force version failed",
				zap.Uint("version", *version),
				zap.Error(err))
		}

		logger.Info("Forced migration version", zap.Uint("version", *version))

	default:
		logger.Fatal("Invalid action", zap.String("action", *action))
	}
}
