package storage

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sourcing/config"
	"sourcing/models"
)

// InitGormDB opens the gorm connection used for the workspace collections.
func InitGormDB(cfg *config.Config) (*gorm.DB, error) {
	logMode := logger.Warn
	if cfg.LogLevel == "debug" {
		logMode = logger.Info
	}

	orm, err := gorm.Open(postgres.Open(cfg.GormDSN()), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logMode),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database with GORM: %w", err)
	}

	sqlDB, err := orm.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	return orm, nil
}

// gormModels are the tables owned by the ORM half of the store.
var gormModels = []interface{}{
	&models.Project{},
	&models.QCChecklist{},
	&models.QCChecklistItem{},
	&models.Notification{},
	&models.ActivityLog{},
}

// AutoMigrate creates or updates the ORM-owned tables.
func AutoMigrate(orm *gorm.DB) error {
	if err := orm.AutoMigrate(gormModels...); err != nil {
		return fmt.Errorf("failed to auto-migrate models: %w", err)
	}
	return nil
}
