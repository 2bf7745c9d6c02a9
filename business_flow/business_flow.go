// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"time"

	"github.com/sidverse/gandaberunda/app/dto"
	"github.com/sidverse/gandaberunda/models"
	"github.com/sidverse/gandaberunda/repository"
	"github.com/sidverse/gandaberunda/utils"
)

// ClientMetadata holds client-related information for audit logging
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// recordAudit writes one audit row. Audit failures are swallowed by callers;
// a missing audit row never fails a business operation.
func recordAudit(ctx context.Context, auditRepo repository.AuditLogRepository, actorKind string, brandID, creatorID *uint, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	ipAddress := ""
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		ActorKind:    actorKind,
		BrandID:      brandID,
		CreatorID:    creatorID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	// Extract request ID from context if available
	requestID := ctx.Value(utils.RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return auditRepo.Save(ctx, audit)
}

// getBrand resolves an active brand or returns the matching sentinel
func getBrand(ctx context.Context, repo repository.BrandRepository, brandID uint) (*models.Brand, error) {
	brand, err := repo.ByID(ctx, brandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, ErrBrandNotFound
	}
	if brand.IsActive != nil && !*brand.IsActive {
		return nil, ErrActorInactive
	}
	return brand, nil
}

// getCreator resolves an active creator or returns the matching sentinel
func getCreator(ctx context.Context, repo repository.CreatorRepository, creatorID uint) (*models.Creator, error) {
	creator, err := repo.ByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, ErrCreatorNotFound
	}
	if creator.IsActive != nil && !*creator.IsActive {
		return nil, ErrActorInactive
	}
	return creator, nil
}

// getAdmin resolves an active admin or returns the matching sentinel
func getAdmin(ctx context.Context, repo repository.AdminRepository, adminID uint) (*models.Admin, error) {
	admin, err := repo.ByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}
	if admin.IsActive != nil && !*admin.IsActive {
		return nil, ErrActorInactive
	}
	return admin, nil
}

// getOwnedCampaign resolves a campaign by UUID and enforces brand ownership
func getOwnedCampaign(ctx context.Context, repo repository.CampaignRepository, uuid string, brandID uint) (*models.Campaign, error) {
	campaign, err := repo.ByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	if campaign.BrandID != brandID {
		return nil, ErrCampaignAccessDenied
	}
	return campaign, nil
}

// getEngagement resolves an engagement by UUID with its campaign preloaded
func getEngagement(ctx context.Context, repo repository.EngagementRepository, uuid string) (*models.Engagement, error) {
	engagement, err := repo.ByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if engagement == nil {
		return nil, ErrEngagementNotFound
	}
	return engagement, nil
}

// toEngagementItem converts an engagement model to its wire representation
func toEngagementItem(e *models.Engagement) dto.EngagementItem {
	item := dto.EngagementItem{
		ID:                  e.ID,
		UUID:                e.UUID.String(),
		CreatorID:           e.CreatorID,
		ShortlistStatus:     string(e.ShortlistStatus),
		NegotiationState:    string(e.NegotiationState),
		CreatorBidAmount:    e.CreatorBidAmount,
		BrandProposedAmount: e.BrandProposedAmount,
		FinalAmount:         e.FinalAmount,
		ScriptState:         string(e.ScriptState),
		ScriptContent:       e.ScriptContent,
		ScriptFeedback:      e.ScriptFeedback,
		ContentState:        string(e.ContentState),
		ContentURI:          e.ContentURI,
		LiveURI:             e.LiveURI,
		ContentFeedback:     e.ContentFeedback,
		CreatedAt:           e.CreatedAt.Format(time.RFC3339),
	}
	if e.Campaign != nil {
		item.CampaignUUID = e.Campaign.UUID.String()
		item.CampaignTitle = e.Campaign.Title
	}
	if e.Creator != nil {
		item.CreatorHandle = e.Creator.Handle
	}
	return item
}

// toCampaignItem converts a campaign model to its wire representation.
// The brief is only attached when visible to the requesting side.
func toCampaignItem(c *models.Campaign, includeBrief bool) dto.CampaignItem {
	item := dto.CampaignItem{
		ID:             c.ID,
		UUID:           c.UUID.String(),
		Title:          c.Title,
		Phase:          string(c.Phase),
		EffectivePhase: string(c.EffectivePhase()),
		Budget:         c.Budget,
		CostPerView:    c.CostPerView,
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
	}

	item.Targeting = &dto.TargetingDTO{
		Categories:   c.Targeting.Categories,
		MinFollowers: c.Targeting.MinFollowers,
		MaxFollowers: c.Targeting.MaxFollowers,
	}

	if includeBrief && !c.Brief.IsEmpty() {
		item.Brief = &dto.BriefDTO{
			Title:          c.Brief.Title,
			Focus:          c.Brief.Focus,
			Dos:            c.Brief.Dos,
			Donts:          c.Brief.Donts,
			CallToAction:   c.Brief.CallToAction,
			SampleAssetURI: c.Brief.SampleAssetURI,
			ScriptTemplate: c.Brief.ScriptTemplate,
		}
	}

	if c.BriefPublishedAt != nil {
		item.BriefPublishedAt = utils.ToPtr(c.BriefPublishedAt.Format(time.RFC3339))
	}
	if c.ArchivedAt != nil {
		item.ArchivedAt = utils.ToPtr(c.ArchivedAt.Format(time.RFC3339))
	}

	return item
}

// campaignWritable rejects engagement writes on archived or completed
// campaigns
func campaignWritable(c *models.Campaign) error {
	if c == nil {
		return ErrCampaignNotFound
	}
	if c.IsArchived() {
		return ErrCampaignArchived
	}
	if c.Phase == models.CampaignPhaseCompleted {
		return ErrCampaignCompleted
	}
	return nil
}
