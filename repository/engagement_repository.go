package repository

import (
	"context"
	"errors"

	"github.com/sidverse/gandaberunda/models"
	"github.com/sidverse/gandaberunda/utils"
	"gorm.io/gorm"
)

// EngagementRepositoryImpl implements the EngagementRepository interface
type EngagementRepositoryImpl struct {
	*BaseRepository[models.Engagement, models.EngagementFilter]
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &EngagementRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Engagement, models.EngagementFilter](db),
	}
}

// ByID retrieves an engagement by ID
func (r *EngagementRepositoryImpl) ByID(ctx context.Context, id uint) (*models.Engagement, error) {
	db := r.getDB(ctx)

	var engagement models.Engagement
	err := db.Preload("Campaign").Preload("Creator").Last(&engagement, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &engagement, nil
}

// ByUUID retrieves an engagement by UUID
func (r *EngagementRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Engagement, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.EngagementFilter{UUID: &parsedUUID}
	engagements, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(engagements) == 0 {
		return nil, nil
	}

	return engagements[0], nil
}

// ByCampaignAndCreator retrieves the single engagement of a creator on a campaign
func (r *EngagementRepositoryImpl) ByCampaignAndCreator(ctx context.Context, campaignID, creatorID uint) (*models.Engagement, error) {
	filter := models.EngagementFilter{CampaignID: &campaignID, CreatorID: &creatorID}
	engagements, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(engagements) == 0 {
		return nil, nil
	}

	return engagements[0], nil
}

// ListByCampaign retrieves engagements of a campaign with pagination
func (r *EngagementRepositoryImpl) ListByCampaign(ctx context.Context, campaignID uint, limit, offset int) ([]*models.Engagement, error) {
	filter := models.EngagementFilter{CampaignID: &campaignID}
	return r.ByFilter(ctx, filter, "created_at ASC", limit, offset)
}

// ListByCreator retrieves engagements of a creator with pagination
func (r *EngagementRepositoryImpl) ListByCreator(ctx context.Context, creatorID uint, limit, offset int) ([]*models.Engagement, error) {
	filter := models.EngagementFilter{CreatorID: &creatorID}
	return r.ByFilter(ctx, filter, "created_at DESC", limit, offset)
}

// guardedUpdate runs a single conditional UPDATE pinning one sub-state column
// to the value the caller observed. RowsAffected 0 signals a lost race.
func (r *EngagementRepositoryImpl) guardedUpdate(ctx context.Context, id uint, column string, expected any, updates map[string]any) (int64, error) {
	db := r.getDB(ctx)

	merged := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		merged[k] = v
	}
	merged["updated_at"] = utils.UTCNow()

	res := db.Model(&models.Engagement{}).
		Where("id = ? AND "+column+" = ?", id, expected).
		Updates(merged)

	return res.RowsAffected, res.Error
}

// UpdateNegotiationIf applies updates only while the negotiation sub-state
// still matches the expected one
func (r *EngagementRepositoryImpl) UpdateNegotiationIf(ctx context.Context, id uint, expected models.NegotiationState, updates map[string]any) (int64, error) {
	return r.guardedUpdate(ctx, id, "negotiation_state", expected, updates)
}

// UpdateScriptIf applies updates only while the script sub-state still matches
// the expected one
func (r *EngagementRepositoryImpl) UpdateScriptIf(ctx context.Context, id uint, expected models.ReviewState, updates map[string]any) (int64, error) {
	return r.guardedUpdate(ctx, id, "script_state", expected, updates)
}

// UpdateContentIf applies updates only while the content sub-state still
// matches the expected one
func (r *EngagementRepositoryImpl) UpdateContentIf(ctx context.Context, id uint, expected models.ReviewState, updates map[string]any) (int64, error) {
	return r.guardedUpdate(ctx, id, "content_state", expected, updates)
}

// UpdateShortlistIf applies updates only while the shortlist status still
// matches the expected one
func (r *EngagementRepositoryImpl) UpdateShortlistIf(ctx context.Context, id uint, expected models.ShortlistStatus, updates map[string]any) (int64, error) {
	return r.guardedUpdate(ctx, id, "shortlist_status", expected, updates)
}

// StateCounts aggregates the sub-state distribution of one campaign's
// engagements in a single scan. OutstandingContent counts engagements that
// could still go live, which gates campaign completion.
func (r *EngagementRepositoryImpl) StateCounts(ctx context.Context, campaignID uint) (*EngagementStateCounts, error) {
	db := r.getDB(ctx)

	var counts EngagementStateCounts
	err := db.Table("engagements").
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE shortlist_status = 'pending') AS shortlist_pending,
			COUNT(*) FILTER (WHERE shortlist_status = 'accepted') AS shortlist_accepted,
			COUNT(*) FILTER (WHERE shortlist_status = 'rejected') AS shortlist_rejected,
			COUNT(*) FILTER (WHERE negotiation_state = 'amount_finalized') AS amounts_finalized,
			COUNT(*) FILTER (WHERE script_state = 'pending') AS scripts_pending,
			COUNT(*) FILTER (WHERE script_state = 'approved') AS scripts_approved,
			COUNT(*) FILTER (WHERE content_state = 'pending') AS content_pending,
			COUNT(*) FILTER (WHERE content_state = 'approved') AS content_approved,
			COUNT(*) FILTER (WHERE content_state = 'live') AS content_live,
			COUNT(*) FILTER (WHERE shortlist_status = 'accepted'
				AND negotiation_state != 'rejected'
				AND content_state != 'live') AS outstanding_content`).
		Where("campaign_id = ?", campaignID).
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	return &counts, nil
}

// ByFilter retrieves engagements based on filter criteria
func (r *EngagementRepositoryImpl) ByFilter(ctx context.Context, filter models.EngagementFilter, orderBy string, limit, offset int) ([]*models.Engagement, error) {
	db := r.getDB(ctx)

	var engagements []*models.Engagement
	query := r.applyFilter(db, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	query = query.Preload("Campaign").Preload("Creator")

	err := query.Find(&engagements).Error
	if err != nil {
		return nil, err
	}

	return engagements, nil
}

// Count returns the number of engagements matching the filter
func (r *EngagementRepositoryImpl) Count(ctx context.Context, filter models.EngagementFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.Engagement{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any engagement matching the filter exists
func (r *EngagementRepositoryImpl) Exists(ctx context.Context, filter models.EngagementFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *EngagementRepositoryImpl) applyFilter(db *gorm.DB, filter models.EngagementFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.CampaignID != nil {
		db = db.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.CreatorID != nil {
		db = db.Where("creator_id = ?", *filter.CreatorID)
	}
	if filter.ShortlistStatus != nil {
		db = db.Where("shortlist_status = ?", *filter.ShortlistStatus)
	}
	if filter.NegotiationState != nil {
		db = db.Where("negotiation_state = ?", *filter.NegotiationState)
	}
	if filter.ScriptState != nil {
		db = db.Where("script_state = ?", *filter.ScriptState)
	}
	if filter.ContentState != nil {
		db = db.Where("content_state = ?", *filter.ContentState)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}

	return db
}
