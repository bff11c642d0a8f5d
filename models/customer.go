package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer is the buyer profile attached to a CUSTOMER user.
type Customer struct {
	ID            string         `gorm:"primaryKey;size:36" json:"id"`
	UserID        string         `gorm:"uniqueIndex;not null;size:36" json:"userId"`
	User          *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Phone         string         `json:"phone"`
	Address       string         `json:"address"`
	CEP           string         `gorm:"column:cep;size:9" json:"cep"`
	City          string         `json:"city"`
	State         string         `json:"state"`
	BirthDate     *time.Time     `json:"birthDate"`
	Orders        []Order        `gorm:"foreignKey:CustomerID" json:"orders,omitempty"`
	Prescriptions []Prescription `gorm:"foreignKey:CustomerID" json:"prescriptions,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	c.ID = ensureID(c.ID)
	return nil
}

// Admin marks a user as back-office staff.
type Admin struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"uniqueIndex;not null;size:36" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the Admin model
func (Admin) TableName() string {
	return "admins"
}

func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	a.ID = ensureID(a.ID)
	return nil
}

// Prescription is an optical prescription kept on the customer profile.
type Prescription struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	CustomerID        string    `gorm:"not null;index;size:36" json:"customerId"`
	RightEyeSphere    *float64  `json:"rightEyeSphere"`
	LeftEyeSphere     *float64  `json:"leftEyeSphere"`
	RightEyeCylinder  *float64  `json:"rightEyeCylinder"`
	LeftEyeCylinder   *float64  `json:"leftEyeCylinder"`
	RightEyeAxis      *int      `json:"rightEyeAxis"`
	LeftEyeAxis       *int      `json:"leftEyeAxis"`
	RightEyeAdd       *float64  `json:"rightEyeAdd"`
	LeftEyeAdd        *float64  `json:"leftEyeAdd"`
	PupillaryDistance *float64  `json:"pupillaryDistance"`
	Notes             string    `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the Prescription model
func (Prescription) TableName() string {
	return "prescriptions"
}

func (p *Prescription) BeforeCreate(tx *gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}
