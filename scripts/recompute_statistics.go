// Rebuilds every learner's statistics totals from their lesson progress.
//
// Streaks are kept as stored; only completed lessons, time spent and average score are recomputed.
// Useful after importing progress records or repairing data by hand. Writes are version-checked,
// so it is safe to run while the server is up.
//
// Usage: go run scripts/recompute_statistics.go [-config configs]

package main

import (
	"context"
	"ethioheritage_backend/internal/config"
	"ethioheritage_backend/internal/repository"
	"ethioheritage_backend/internal/service"
	"ethioheritage_backend/pkg/database"
	"ethioheritage_backend/pkg/logger"
	"flag"
	"log"
)

func main() {
	configDir := flag.String("config", "configs", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	progressService := service.NewProgressService(
		db,
		service.NewCatalogService(repository.NewCatalogRepository(db), nil),
		repository.NewProgressRepository(db),
		repository.NewStatisticsRepository(db),
		service.NewAchievementService(repository.NewAchievementRepository(db)),
		service.NewLocalLocker(cfg.Progress.LockWait),
		nil,
		nil,
		&cfg.Progress,
	)

	log.Println("Recomputing learner statistics...")
	processed, failed, err := progressService.ReconcileStatistics(context.Background())
	if err != nil {
		log.Fatalf("Reconciliation aborted: %v", err)
	}
	log.Printf("Done: %d recomputed, %d failed", processed, failed)
}
