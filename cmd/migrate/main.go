package main

import (
	"github.com/SeakMengs/OpenSight/internal/config"
	"github.com/SeakMengs/OpenSight/internal/database"
	"github.com/SeakMengs/OpenSight/internal/env"
	"github.com/SeakMengs/OpenSight/internal/model"
	"github.com/SeakMengs/OpenSight/internal/util"
)

func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV)
	defer logger.Sync()

	logger.Infof("Database configuration: host=%s port=%s db=%s", cfg.DB.DB_HOST, cfg.DB.DB_PORT, cfg.DB.DB_DATABASE)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	migrateErr := db.AutoMigrate(&model.Project{}, &model.Image{}, &model.TrainingRun{})
	if migrateErr != nil {
		logger.Panic(migrateErr)
	}

	logger.Info("Migration completed")
}
