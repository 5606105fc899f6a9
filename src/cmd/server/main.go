package main

import (
	"context"
	"log"
	"time"

	"github.com/api-sage/pix-ledger/src/internal/adapter/repository/postgres"
	"github.com/api-sage/pix-ledger/src/internal/config"
	"github.com/api-sage/pix-ledger/src/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := postgres.RunMigrations(ctx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}
	log.Println("initial migrations completed successfully")

	if !cfg.SeedDemoData {
		return
	}

	db, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	seeder := services.NewSeedService(
		postgres.NewAccountRepository(db),
		postgres.NewLedgerRepository(db),
	)
	if err := seeder.Run(ctx); err != nil {
		log.Fatalf("seed demo data: %v", err)
	}
	log.Println("demo data seeded successfully")
}
