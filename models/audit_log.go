package models

import (
	"encoding/json"
	"time"
)

// Actor kinds for audit entries
const (
	AuditActorAdmin   = "admin"
	AuditActorBrand   = "brand"
	AuditActorCreator = "creator"
)

type AuditLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	ActorKind    string          `gorm:"size:20;not null;index:idx_audit_actor_kind" json:"actor_kind"`
	BrandID      *uint           `gorm:"index:idx_audit_brand_id" json:"brand_id,omitempty"`
	CreatorID    *uint           `gorm:"index:idx_audit_creator_id" json:"creator_id,omitempty"`
	Action       string          `gorm:"size:80;not null;index:idx_audit_action" json:"action"`
	Description  *string         `gorm:"type:text" json:"description,omitempty"`
	IPAddress    *string         `gorm:"type:inet;index:idx_audit_ip_address" json:"ip_address,omitempty"`
	UserAgent    *string         `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID    *string         `gorm:"size:255;index:idx_audit_request_id" json:"request_id,omitempty"`
	Metadata     json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	Success      *bool           `gorm:"default:true;index:idx_audit_success" json:"success"`
	ErrorMessage *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit action constants
const (
	AuditActionCampaignCreated        = "campaign_created"
	AuditActionCampaignCreationFailed = "campaign_creation_failed"
	AuditActionCampaignArchived       = "campaign_archived"
	AuditActionCampaignCompleted      = "campaign_completed"
	AuditActionShortlistUploaded      = "shortlist_uploaded"
	AuditActionShortlistUploadFailed  = "shortlist_upload_failed"
	AuditActionCreatorsResponded      = "creators_responded"
	AuditActionAmountsFinalized       = "amounts_finalized"
	AuditActionSelectionSubmitted     = "selection_submitted"
	AuditActionBriefPublished         = "brief_published"
	AuditActionBriefPublishFailed     = "brief_publish_failed"
	AuditActionBidSubmitted           = "bid_submitted"
	AuditActionBidAccepted            = "bid_accepted"
	AuditActionBidCountered           = "bid_countered"
	AuditActionBidRejected            = "bid_rejected"
	AuditActionDealAccepted           = "deal_accepted"
	AuditActionDealRejected           = "deal_rejected"
	AuditActionScriptSubmitted        = "script_submitted"
	AuditActionScriptReviewed         = "script_reviewed"
	AuditActionContentUploaded        = "content_uploaded"
	AuditActionContentReviewed        = "content_reviewed"
	AuditActionContentWentLive        = "content_went_live"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint
	ActorKind     *string
	BrandID       *uint
	CreatorID     *uint
	Action        *string
	Success       *bool
	IPAddress     *string
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *AuditLog) IsFailed() bool {
	return a.Success != nil && !*a.Success
}
