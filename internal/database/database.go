package database

import (
	"fmt"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fintechforge/forge-api/internal/clearing"
	"github.com/fintechforge/forge-api/internal/database/migrations"
	"github.com/fintechforge/forge-api/internal/settlement"
	"github.com/fintechforge/forge-api/internal/trading"
	"github.com/fintechforge/forge-api/internal/types"
)

// NewDatabase initializes and returns a new GORM DB connection.
// The sqlite path comes from DATABASE_PATH, defaulting to forge.db.
func NewDatabase() (*gorm.DB, error) {
	path := os.Getenv("DATABASE_PATH")
	if path == "" {
		path = "forge.db"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := migrations.AddExchangeFills(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := migrations.AddTradeNetting(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Auto-migrate other schemas
	err = db.AutoMigrate(
		&types.Order{},
		&types.Trade{},
		&types.TradeStatusChange{},
		&types.Instrument{},
		&trading.IdempotencyRecord{},
		&clearing.Clearing{},
		&settlement.Settlement{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
