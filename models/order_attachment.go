package models

import (
	"time"

	"gorm.io/gorm"
)

// Attachment type values
const (
	AttachmentGlassesPhoto      = "GLASSES_PHOTO"
	AttachmentPrescriptionPhoto = "PRESCRIPTION_PHOTO"
	AttachmentIdentityDocument  = "IDENTITY_DOCUMENT"
	AttachmentOther             = "OTHER"
)

// OrderAttachment is a file uploaded for an order (photo of the frames, prescription, ID).
type OrderAttachment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	OrderID   string    `gorm:"not null;index;size:36" json:"orderId"`
	Type      string    `gorm:"not null;size:32" json:"type"`
	FileName  string    `gorm:"not null" json:"fileName"`
	FileURL   string    `gorm:"column:file_url;not null" json:"fileUrl"`
	FileSize  int64     `json:"fileSize"`
	MimeType  string    `json:"mimeType"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for the OrderAttachment model
func (OrderAttachment) TableName() string {
	return "order_attachments"
}

func (a *OrderAttachment) BeforeCreate(tx *gorm.DB) error {
	a.ID = ensureID(a.ID)
	return nil
}
