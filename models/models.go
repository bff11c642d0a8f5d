package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Customer{},
		&Admin{},
		&Prescription{},
		&LensType{},
		&Order{},
		&OrderItem{},
		&Tracking{},
		&OrderAttachment{},
		&RefreshSession{},
	}
}

// Migrate creates or updates the schema for every model
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}

func ensureID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
