package database

import (
	"fmt"

	"github.com/anjiri1684/therapy_booking/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func ConnectDB(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	log.Info("database connected")
	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Therapist{},
		&models.Slot{},
		&models.Price{},
		&models.Order{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// At most one current price per therapist, currency and session type.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_prices_one_current
		ON prices (therapist_id, currency, session_type) WHERE state = 'current'`).Error
	if err != nil {
		return fmt.Errorf("create current price index: %w", err)
	}

	log.Info("database migration successful")
	return nil
}
