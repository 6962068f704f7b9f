package main

import (
	"flag"
	"log"
	"log/slog"

	"github.com/simp-lee/koiconsult/internal/app"
	"github.com/simp-lee/koiconsult/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	migrateOnly := flag.Bool("migrate", false, "apply the database schema and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	if *migrateOnly {
		if err := migrate(cfg); err != nil {
			log.Fatal("migration failed: ", err)
		}
		return
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal("failed to create app: ", err)
	}

	if err := a.Run(); err != nil {
		log.Fatal("server error: ", err)
	}
}

func migrate(cfg *config.Config) error {
	db, err := config.SetupDatabase(&cfg.Database, slog.Default())
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := config.Migrate(db); err != nil {
		return err
	}
	slog.Info("schema migrated", slog.String("driver", cfg.Database.Driver))
	return nil
}
