package migrations

import (
	"gorm.io/gorm"

	orderspostgres "github.com/Apurer/fulfillment-api/internal/domains/orders/adapters/persistence/postgres"
)

// Run applies the schema for the bounded contexts. Adapters never automigrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(orderspostgres.Models()...)
}
