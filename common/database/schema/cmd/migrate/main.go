package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"jobconsole/common/database"
	"jobconsole/common/database/schema"
	"jobconsole/common/database/schema/migrations"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration instead of applying pending ones")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Fatal("Failed to load .env", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.New(ctx, database.Options{
		DSN:      getEnv("CLICKHOUSE_DSN", "localhost:9000"),
		Username: getEnv("CLICKHOUSE_USERNAME", "default"),
		Password: getEnv("CLICKHOUSE_PASSWORD", ""),
		Database: getEnv("CLICKHOUSE_DATABASE", "jobconsole"),
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to ClickHouse", zap.Error(err))
	}
	defer db.Close()

	migrator := schema.NewMigrator(db.Conn(), logger)

	if *down {
		rollbackLatest(ctx, migrator, logger)
		return
	}

	applied, err := migrator.Migrate(ctx, migrations.All())
	if err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	logger.Info("All migrations completed successfully", zap.Int("applied", applied))
}

func rollbackLatest(ctx context.Context, migrator *schema.Migrator, logger *zap.Logger) {
	applied, err := migrator.GetAppliedMigrations(ctx)
	if err != nil {
		logger.Fatal("Failed to get applied migrations", zap.Error(err))
	}

	all := migrations.All()
	for i := len(all) - 1; i >= 0; i-- {
		if _, ok := applied[all[i].Version]; !ok {
			continue
		}
		if err := migrator.RollbackMigration(ctx, all[i]); err != nil {
			logger.Fatal("Failed to roll back migration",
				zap.Int("version", all[i].Version),
				zap.Error(err))
		}
		logger.Info("Rolled back migration", zap.Int("version", all[i].Version))
		return
	}
	logger.Info("No migrations to roll back")
}
