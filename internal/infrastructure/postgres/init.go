package postgres

import (
	"log"

	"github.com/fadehouse/compensation-service/internal/config"
	"github.com/fadehouse/compensation-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.CompensationConfig) *gorm.DB {
	dsn := cfg.CompensationDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(
		&models.MatrixNodeModel{},
		&models.MemberRankModel{},
		&models.RankHistoryModel{},
		&models.CommissionEventModel{},
		&models.ProcessedEventModel{},
		&models.PayoutRequestModel{},
	)

	return db
}
