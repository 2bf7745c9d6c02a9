// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/sidverse/gandaberunda/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// BrandRepository defines operations for brands
type BrandRepository interface {
	Repository[models.Brand, models.BrandFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Brand, error)
	ByContactEmail(ctx context.Context, email string) (*models.Brand, error)
}

// CreatorRepository defines operations for creators
type CreatorRepository interface {
	Repository[models.Creator, models.CreatorFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Creator, error)
	ByHandle(ctx context.Context, handle string) (*models.Creator, error)
	ListByIDs(ctx context.Context, ids []uint) ([]*models.Creator, error)
}

// AdminRepository defines operations for admins
type AdminRepository interface {
	Repository[models.Admin, models.AdminFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Admin, error)
	ByUsername(ctx context.Context, username string) (*models.Admin, error)
}

// CampaignRepository defines operations for campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Campaign, error)
	ByBrandID(ctx context.Context, brandID uint, limit, offset int) ([]*models.Campaign, error)
	Update(ctx context.Context, campaign models.Campaign) error
	// UpdatePhaseIf performs a guarded phase transition: the update applies only
	// if the stored phase still matches the expected one. Returns rows affected.
	UpdatePhaseIf(ctx context.Context, id uint, expected models.CampaignPhase, updates map[string]any) (int64, error)
	UpdateFields(ctx context.Context, id uint, updates map[string]any) error
}

// EngagementStateCounts summarizes the engagement sub-states of one campaign
type EngagementStateCounts struct {
	Total              int64 `json:"total"`
	ShortlistPending   int64 `json:"shortlist_pending"`
	ShortlistAccepted  int64 `json:"shortlist_accepted"`
	ShortlistRejected  int64 `json:"shortlist_rejected"`
	AmountsFinalized   int64 `json:"amounts_finalized"`
	ScriptsPending     int64 `json:"scripts_pending"`
	ScriptsApproved    int64 `json:"scripts_approved"`
	ContentPending     int64 `json:"content_pending"`
	ContentApproved    int64 `json:"content_approved"`
	ContentLive        int64 `json:"content_live"`
	OutstandingContent int64 `json:"outstanding_content"`
}

// EngagementRepository defines operations for engagements
type EngagementRepository interface {
	Repository[models.Engagement, models.EngagementFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Engagement, error)
	ByCampaignAndCreator(ctx context.Context, campaignID, creatorID uint) (*models.Engagement, error)
	ListByCampaign(ctx context.Context, campaignID uint, limit, offset int) ([]*models.Engagement, error)
	ListByCreator(ctx context.Context, creatorID uint, limit, offset int) ([]*models.Engagement, error)
	// The UpdateXxxIf methods perform guarded conditional updates: a single
	// UPDATE whose WHERE clause pins the sub-state the caller observed. Zero
	// rows affected means the row moved (or vanished) since the read.
	UpdateNegotiationIf(ctx context.Context, id uint, expected models.NegotiationState, updates map[string]any) (int64, error)
	UpdateScriptIf(ctx context.Context, id uint, expected models.ReviewState, updates map[string]any) (int64, error)
	UpdateContentIf(ctx context.Context, id uint, expected models.ReviewState, updates map[string]any) (int64, error)
	UpdateShortlistIf(ctx context.Context, id uint, expected models.ShortlistStatus, updates map[string]any) (int64, error)
	StateCounts(ctx context.Context, campaignID uint) (*EngagementStateCounts, error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByBrand(ctx context.Context, brandID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByCreator(ctx context.Context, creatorID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}
