// Package database opens the GORM connection backing the storefront.
package database

import (
	"fmt"

	"nursery/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the database named by driver and dsn.
func Open(driver, dsn string, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		// Feedback may reference users without a profile row.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	log.Info("database connected", zap.String("driver", driver))
	return db, nil
}

// Migrate creates or updates every table used by the storefront.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Plant{},
		&models.User{},
		&models.UserProfile{},
		&models.WishlistItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Feedback{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	for _, stmt := range indexStatements(db.Dialector.Name()) {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// indexStatements returns the indexes AutoMigrate cannot express for
// dialect.
func indexStatements(dialect string) []string {
	if dialect != DriverPostgres {
		return nil
	}
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_plants_search ON plants USING GIN (" + models.PlantSearchVector + ")",
	}
}
