package models

import "gorm.io/gorm"

// Migrate applies the schema for every fluxline model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Organization{},
		&Connection{},
		&Upload{},
		&Transformation{},
		&Pipeline{},
		&Dependency{},
		&Run{},
		&Schedule{},
		&Task{},
	)
}
