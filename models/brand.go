// Package models contains domain entities and business models for the engagement workflow
package models

import (
	"time"

	"github.com/google/uuid"
)

// Brand roles as supplied by the identity provider
const (
	BrandRoleOwner    = "brand_owner"
	BrandRoleEmployee = "brand_emp"
)

type Brand struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_brands_uuid" json:"uuid"`

	CompanyName string `gorm:"size:120;not null" json:"company_name"`
	Website     *string `gorm:"size:255" json:"website,omitempty"`

	// Representative fields
	ContactName   string `gorm:"size:255;not null" json:"contact_name"`
	ContactEmail  string `gorm:"size:255;not null;uniqueIndex:idx_brands_contact_email" json:"contact_email"`
	ContactMobile string `gorm:"size:15;not null;uniqueIndex:idx_brands_contact_mobile" json:"contact_mobile"`
	PasswordHash  string `gorm:"size:255;not null" json:"-"` // Never serialize password hash
	Role          string `gorm:"size:20;not null;default:'brand_owner'" json:"role"`

	IsActive *bool `gorm:"default:true;index:idx_brands_is_active" json:"is_active"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_brands_created_at" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Relations
	Campaigns []Campaign `gorm:"foreignKey:BrandID" json:"campaigns,omitempty"`
	AuditLogs []AuditLog `gorm:"foreignKey:BrandID" json:"-"`
}

func (Brand) TableName() string {
	return "brands"
}

// BrandFilter represents filter criteria for brands
type BrandFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	ContactEmail  *string    `json:"contact_email,omitempty"`
	ContactMobile *string    `json:"contact_mobile,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
}
