package repository

import (
	"context"

	"github.com/sidverse/gandaberunda/models"
	"github.com/sidverse/gandaberunda/utils"
	"gorm.io/gorm"
)

// CreatorRepositoryImpl implements the CreatorRepository interface
type CreatorRepositoryImpl struct {
	*BaseRepository[models.Creator, models.CreatorFilter]
}

// NewCreatorRepository creates a new creator repository
func NewCreatorRepository(db *gorm.DB) CreatorRepository {
	return &CreatorRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Creator, models.CreatorFilter](db),
	}
}

// ByUUID retrieves a creator by UUID
func (r *CreatorRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Creator, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.CreatorFilter{UUID: &parsedUUID}
	creators, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(creators) == 0 {
		return nil, nil
	}

	return creators[0], nil
}

// ByHandle retrieves a creator by handle
func (r *CreatorRepositoryImpl) ByHandle(ctx context.Context, handle string) (*models.Creator, error) {
	filter := models.CreatorFilter{Handle: &handle}
	creators, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(creators) == 0 {
		return nil, nil
	}

	return creators[0], nil
}

// ListByIDs retrieves creators for a set of IDs
func (r *CreatorRepositoryImpl) ListByIDs(ctx context.Context, ids []uint) ([]*models.Creator, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	db := r.getDB(ctx)

	var creators []*models.Creator
	err := db.Where("id IN ?", ids).Find(&creators).Error
	if err != nil {
		return nil, err
	}

	return creators, nil
}

// ByFilter retrieves creators based on filter criteria
func (r *CreatorRepositoryImpl) ByFilter(ctx context.Context, filter models.CreatorFilter, orderBy string, limit, offset int) ([]*models.Creator, error) {
	db := r.getDB(ctx)

	var creators []*models.Creator
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

	err := query.Find(&creators).Error
	if err != nil {
		return nil, err
	}

	return creators, nil
}

// Count returns the number of creators matching the filter
func (r *CreatorRepositoryImpl) Count(ctx context.Context, filter models.CreatorFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.Creator{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any creator matching the filter exists
func (r *CreatorRepositoryImpl) Exists(ctx context.Context, filter models.CreatorFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *CreatorRepositoryImpl) applyFilter(db *gorm.DB, filter models.CreatorFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.Handle != nil {
		db = db.Where("handle = ?", *filter.Handle)
	}
	if filter.Category != nil {
		db = db.Where("category = ?", *filter.Category)
	}
	if filter.MinFollowers != nil {
		db = db.Where("follower_count >= ?", *filter.MinFollowers)
	}
	if filter.MaxFollowers != nil {
		db = db.Where("follower_count <= ?", *filter.MaxFollowers)
	}
	if filter.ContactEmail != nil {
		db = db.Where("contact_email = ?", *filter.ContactEmail)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}

	return db
}
