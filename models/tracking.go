package models

import (
	"time"

	"gorm.io/gorm"
)

// Tracking status values
const (
	TrackingOrderPlaced        = "ORDER_PLACED"
	TrackingConfirmed          = "CONFIRMED"
	TrackingGlassesReceived    = "GLASSES_RECEIVED"
	TrackingLensesInProduction = "LENSES_IN_PRODUCTION"
	TrackingReadyForDelivery   = "READY_FOR_DELIVERY"
	TrackingDelivered          = "DELIVERED"
	TrackingCancelled          = "CANCELLED"
)

var statusDescriptions = map[string]string{
	OrderStatusPending:            "Pedido recebido e aguardando processamento",
	OrderStatusConfirmed:          "Pedido confirmado",
	OrderStatusGlassesReceived:    "Óculos recebidos",
	OrderStatusLensesInProduction: "Lentes em produção",
	OrderStatusReadyForDelivery:   "Pronto para entrega",
	OrderStatusDelivered:          "Pedido entregue",
	OrderStatusCancelled:          "Pedido cancelado",
}

// TrackingStatusFor maps an order status to the tracking status recorded for it.
// PENDING is recorded as ORDER_PLACED; the remaining statuses share their names.
func TrackingStatusFor(orderStatus string) string {
	if orderStatus == OrderStatusPending {
		return TrackingOrderPlaced
	}
	return orderStatus
}

// StatusDescription returns the customer-facing text recorded when an order moves to status
func StatusDescription(status string) string {
	if d, ok := statusDescriptions[status]; ok {
		return d
	}
	return status
}

// Tracking is one entry of an order's history. Rows are append-only.
type Tracking struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	OrderID     string    `gorm:"not null;index;size:36" json:"orderId"`
	Status      string    `gorm:"not null;size:32" json:"status"`
	Description string    `gorm:"type:text" json:"description"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName specifies the table name for the Tracking model
func (Tracking) TableName() string {
	return "tracking"
}

func (t *Tracking) BeforeCreate(tx *gorm.DB) error {
	t.ID = ensureID(t.ID)
	return nil
}
