package repository

import (
	"context"
	"errors"

	"github.com/sidverse/gandaberunda/models"
	"github.com/sidverse/gandaberunda/utils"
	"gorm.io/gorm"
)

// CampaignRepositoryImpl implements the CampaignRepository interface
type CampaignRepositoryImpl struct {
	*BaseRepository[models.Campaign, models.CampaignFilter]
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &CampaignRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Campaign, models.CampaignFilter](db),
	}
}

// ByID retrieves a campaign by ID
func (r *CampaignRepositoryImpl) ByID(ctx context.Context, id uint) (*models.Campaign, error) {
	db := r.getDB(ctx)

	var campaign models.Campaign
	err := db.Preload("Brand").Last(&campaign, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &campaign, nil
}

// ByUUID retrieves a campaign by UUID
func (r *CampaignRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Campaign, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.CampaignFilter{UUID: &parsedUUID}
	campaigns, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(campaigns) == 0 {
		return nil, nil
	}

	return campaigns[0], nil
}

// ByBrandID retrieves campaigns by brand ID with pagination
func (r *CampaignRepositoryImpl) ByBrandID(ctx context.Context, brandID uint, limit, offset int) ([]*models.Campaign, error) {
	filter := models.CampaignFilter{BrandID: &brandID}
	return r.ByFilter(ctx, filter, "created_at DESC", limit, offset)
}

// Update updates a campaign
func (r *CampaignRepositoryImpl) Update(ctx context.Context, campaign models.Campaign) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	now := utils.UTCNow()
	campaign.UpdatedAt = &now

	err = db.Save(&campaign).Error
	if err != nil {
		return err
	}

	return nil
}

// UpdatePhaseIf applies updates only while the stored phase still matches the
// phase the caller observed. Returns rows affected; zero means the campaign
// moved underneath the caller (or does not exist).
func (r *CampaignRepositoryImpl) UpdatePhaseIf(ctx context.Context, id uint, expected models.CampaignPhase, updates map[string]any) (int64, error) {
	db := r.getDB(ctx)

	merged := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		merged[k] = v
	}
	merged["updated_at"] = utils.UTCNow()

	res := db.Model(&models.Campaign{}).
		Where("id = ? AND phase = ?", id, expected).
		Updates(merged)

	return res.RowsAffected, res.Error
}

// UpdateFields updates arbitrary campaign columns without a phase guard
func (r *CampaignRepositoryImpl) UpdateFields(ctx context.Context, id uint, updates map[string]any) error {
	db := r.getDB(ctx)

	merged := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		merged[k] = v
	}
	merged["updated_at"] = utils.UTCNow()

	return db.Model(&models.Campaign{}).
		Where("id = ?", id).
		Updates(merged).Error
}

// ByFilter retrieves campaigns based on filter criteria
func (r *CampaignRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	db := r.getDB(ctx)

	var campaigns []*models.Campaign
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

	query = query.Preload("Brand")

	err := query.Find(&campaigns).Error
	if err != nil {
		return nil, err
	}

	return campaigns, nil
}

// Count returns the number of campaigns matching the filter
func (r *CampaignRepositoryImpl) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.Campaign{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any campaign matching the filter exists
func (r *CampaignRepositoryImpl) Exists(ctx context.Context, filter models.CampaignFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *CampaignRepositoryImpl) applyFilter(db *gorm.DB, filter models.CampaignFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.BrandID != nil {
		db = db.Where("brand_id = ?", *filter.BrandID)
	}
	if filter.Phase != nil {
		db = db.Where("phase = ?", *filter.Phase)
	}
	if filter.Title != nil {
		db = db.Where("title ILIKE ?", "%"+*filter.Title+"%")
	}
	if filter.Archived != nil {
		if *filter.Archived {
			db = db.Where("archived_at IS NOT NULL")
		} else {
			db = db.Where("archived_at IS NULL")
		}
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}
	if filter.MinBudget != nil {
		db = db.Where("budget >= ?", *filter.MinBudget)
	}
	if filter.MaxBudget != nil {
		db = db.Where("budget <= ?", *filter.MaxBudget)
	}

	return db
}
