package main

import (
	"github.com/oggyb/smshub/internal/config"
	"github.com/oggyb/smshub/internal/db/gormdb"
	"github.com/oggyb/smshub/internal/logger"
	activationgorm "github.com/oggyb/smshub/internal/repository/gorm/activation"
)

func main() {
	cfg := config.New()
	log := logger.Component(logger.New(cfg.IsDevelopment(), cfg.App.LogLevel), "migrate")

	db, err := gormdb.New(cfg.PostgresDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	log.Info().Str("database", cfg.DB.Name).Msg("connected")

	if err := db.Migrate(&activationgorm.ActivationModel{}); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate failed")
	}
	log.Info().Msg("activations table is up to date")
}
