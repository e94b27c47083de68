package main

import (
	"context"
	"os"

	"entregas/config"
	"entregas/pkg/logger"
	"entregas/storage/postgres"
)

// Wipes accounts and everything that hangs off them. Tariffs are kept as
// they are reference data seeded by migrations.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)
	pg, err := postgres.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to connect", logger.Error(err))
		os.Exit(1)
	}
	defer pg.Close()

	const query = `TRUNCATE TABLE notifications, withdrawals, ratings, deliveries, orders, driver_vehicles, profiles RESTART IDENTITY CASCADE`
	if _, err := pg.GetPool().Exec(context.Background(), query); err != nil {
		log.Error("failed to truncate tables", logger.Error(err))
		os.Exit(1)
	}
	log.Info("tables truncated: profiles, orders, deliveries, ratings, withdrawals, notifications, driver_vehicles")
}
