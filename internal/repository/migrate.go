package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the tables from the gorm models. Used in
// development and tests; deployed databases use the SQL migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&PropertyModel{}, &BookingModel{})
}
