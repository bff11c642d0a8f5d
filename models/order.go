package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order status values
const (
	OrderStatusPending            = "PENDING"
	OrderStatusConfirmed          = "CONFIRMED"
	OrderStatusGlassesReceived    = "GLASSES_RECEIVED"
	OrderStatusLensesInProduction = "LENSES_IN_PRODUCTION"
	OrderStatusReadyForDelivery   = "READY_FOR_DELIVERY"
	OrderStatusDelivered          = "DELIVERED"
	OrderStatusCancelled          = "CANCELLED"
)

// OrderStatuses lists every order status in lifecycle order
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusGlassesReceived,
	OrderStatusLensesInProduction,
	OrderStatusReadyForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// IsValidOrderStatus reports whether status is one of OrderStatuses
func IsValidOrderStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Order is a purchase of one or more lens types by a customer.
// TotalAmount is captured at creation and never recomputed.
type Order struct {
	ID          string            `gorm:"primaryKey;size:36" json:"id"`
	CustomerID  string            `gorm:"not null;index;size:36" json:"customerId"`
	Customer    *Customer         `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	TotalAmount decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	Status      string            `gorm:"not null;size:32;index" json:"status"`
	Notes       string            `gorm:"type:text" json:"notes"`
	Items       []OrderItem       `gorm:"foreignKey:OrderID" json:"items"`
	Tracking    []Tracking        `gorm:"foreignKey:OrderID" json:"tracking"`
	Attachments []OrderAttachment `gorm:"foreignKey:OrderID" json:"attachments"`
	CreatedAt   time.Time         `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	o.ID = ensureID(o.ID)
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	return nil
}

// OrderItem is one lens type on an order, with the price captured when the order was placed.
type OrderItem struct {
	ID         string          `gorm:"primaryKey;size:36" json:"id"`
	OrderID    string          `gorm:"not null;index;size:36" json:"orderId"`
	LensTypeID string          `gorm:"not null;index;size:36" json:"lensTypeId"`
	LensType   *LensType       `gorm:"foreignKey:LensTypeID" json:"lensType,omitempty"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	i.ID = ensureID(i.ID)
	if i.Quantity == 0 {
		i.Quantity = 1
	}
	return nil
}
