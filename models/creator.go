package models

import (
	"time"

	"github.com/google/uuid"
)

type Creator struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_creators_uuid" json:"uuid"`

	Handle      string  `gorm:"size:60;not null;uniqueIndex:idx_creators_handle" json:"handle"`
	DisplayName string  `gorm:"size:120;not null" json:"display_name"`
	Category    *string `gorm:"size:60;index:idx_creators_category" json:"category,omitempty"`

	FollowerCount uint64 `gorm:"not null;default:0" json:"follower_count"`

	ContactEmail  string `gorm:"size:255;not null;uniqueIndex:idx_creators_contact_email" json:"contact_email"`
	ContactMobile string `gorm:"size:15;not null;uniqueIndex:idx_creators_contact_mobile" json:"contact_mobile"`
	PasswordHash  string `gorm:"size:255;not null" json:"-"` // Never serialize password hash

	IsActive *bool `gorm:"default:true;index:idx_creators_is_active" json:"is_active"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_creators_created_at" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Relations
	Engagements []Engagement `gorm:"foreignKey:CreatorID" json:"engagements,omitempty"`
	AuditLogs   []AuditLog   `gorm:"foreignKey:CreatorID" json:"-"`
}

func (Creator) TableName() string {
	return "creators"
}

// CreatorFilter represents filter criteria for creators
type CreatorFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	Handle        *string    `json:"handle,omitempty"`
	Category      *string    `json:"category,omitempty"`
	MinFollowers  *uint64    `json:"min_followers,omitempty"`
	MaxFollowers  *uint64    `json:"max_followers,omitempty"`
	ContactEmail  *string    `json:"contact_email,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
}
