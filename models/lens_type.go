package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LensType is a catalog entry: one category of corrective lens with a fixed base price.
type LensType struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	Name        string          `gorm:"uniqueIndex;not null;size:191" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"basePrice"`
	IsActive    bool            `gorm:"not null;index" json:"isActive"` // no default tag: gorm would skip an explicit false
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for the LensType model
func (LensType) TableName() string {
	return "lens_types"
}

func (l *LensType) BeforeCreate(tx *gorm.DB) error {
	l.ID = ensureID(l.ID)
	return nil
}
