package database

import (
	"equiprental/model"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Equipment{},
		&model.Quote{},
		&model.QuoteItem{},
		&model.Reservation{},
		&model.ReservationItem{},
	)
}
