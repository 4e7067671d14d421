package database

import (
	"fmt"

	"github.com/gdg-garage/convention-booking/internal/config"
	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector picks the gorm driver named by DATABASE_DRIVER.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DatabaseDriver {
	case "", "sqlite":
		return sqlite.Open(cfg.DatabasePath), nil
	case "postgres":
		if cfg.DatabaseDSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required for the postgres driver")
		}
		return postgres.Open(cfg.DatabaseDSN), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
}

// Open connects and migrates. Relations are cascaded by the store, so no
// foreign key constraints are created.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.APIKey{},
		&models.Event{},
		&models.Day{},
		&models.Discipline{},
		&models.WebPage{},
		&models.Rate{},
		&models.Price{},
		&models.Product{},
		&models.ProductVariant{},
		&models.Document{},
		&models.Booking{},
		&models.Transaction{},
		&models.Attachment{},
	)
	if err != nil {
		return fmt.Errorf("auto migrating: %w", err)
	}
	return nil
}

func Connect(cfg *config.Config) *gorm.DB {
	dialector, err := Dialector(cfg)
	if err != nil {
		logrus.Fatalf("Failed to configure database: %v", err)
	}

	db, err := Open(dialector)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	if cfg.DatabaseDriver == "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			logrus.Fatalf("Error establishing connection to database: %v", err)
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}

	return db
}
