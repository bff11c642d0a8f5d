package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values for User.Role
const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

// User is an account that can sign in. It owns at most one of Customer or Admin.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	Name      string    `gorm:"not null" json:"name"`
	Role      string    `gorm:"not null;size:16" json:"role"`
	Customer  *Customer `gorm:"foreignKey:UserID" json:"customer"`
	Admin     *Admin    `gorm:"foreignKey:UserID" json:"admin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.ID = ensureID(u.ID)
	return nil
}

// IsAdmin reports whether the loaded user carries an Admin profile.
func (u *User) IsAdmin() bool {
	return u.Admin != nil
}
