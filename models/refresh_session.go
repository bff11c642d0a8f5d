package models

import "time"

// RefreshSession records an issued refresh token by its jti.
// A session is live while RevokedAt is nil and ExpiresAt is in the future.
type RefreshSession struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	UserID       string     `gorm:"not null;index;size:36" json:"userId"`
	ExpiresAt    time.Time  `gorm:"not null" json:"expiresAt"`
	RevokedAt    *time.Time `json:"revokedAt"`
	ReplacedByID *string    `gorm:"size:36" json:"replacedById"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// TableName specifies the table name for the RefreshSession model
func (RefreshSession) TableName() string {
	return "refresh_sessions"
}

// IsLive reports whether the session can still be exchanged at now
func (s *RefreshSession) IsLive(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
