package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sidverse/gandaberunda/utils"
	"gorm.io/gorm"
)

// CampaignPhase represents the brand-facing aggregate state of a campaign.
// "awaiting_brief" is a derived view (see AwaitingBrief / EffectivePhase),
// never a stored value.
type CampaignPhase string

const (
	CampaignPhaseSourcing            CampaignPhase = "sourcing"
	CampaignPhaseCreatorsShortlisted CampaignPhase = "creators_shortlisted"
	CampaignPhaseCreatorsAreFinal    CampaignPhase = "creators_are_final"
	CampaignPhaseBriefPublished      CampaignPhase = "brief_published"
	CampaignPhaseInProduction        CampaignPhase = "in_production"
	CampaignPhaseCompleted           CampaignPhase = "completed"
)

// CampaignPhaseAwaitingBrief is the derived phase exposed to clients between
// selection commit and brief publication
const CampaignPhaseAwaitingBrief CampaignPhase = "awaiting_brief"

// String returns the string representation of the phase
func (p CampaignPhase) String() string {
	return string(p)
}

// Valid checks if the phase is a storable member of the closed set
func (p CampaignPhase) Valid() bool {
	switch p {
	case CampaignPhaseSourcing, CampaignPhaseCreatorsShortlisted,
		CampaignPhaseCreatorsAreFinal, CampaignPhaseBriefPublished,
		CampaignPhaseInProduction, CampaignPhaseCompleted:
		return true
	default:
		return false
	}
}

// SelectionCommitted reports whether creator selection has been finalized;
// brief upload and all engagement work is gated on this.
func (p CampaignPhase) SelectionCommitted() bool {
	switch p {
	case CampaignPhaseCreatorsAreFinal, CampaignPhaseBriefPublished,
		CampaignPhaseInProduction, CampaignPhaseCompleted:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for CampaignPhase
func (p *CampaignPhase) Scan(value any) error {
	if value == nil {
		*p = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*p = CampaignPhase(v)
	case []byte:
		*p = CampaignPhase(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CampaignPhase", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for CampaignPhase
func (p CampaignPhase) Value() (driver.Value, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid CampaignPhase: %s", p)
	}
	return string(p), nil
}

// CampaignTargeting holds the creator-matching criteria for a campaign
type CampaignTargeting struct {
	Categories   []string `json:"categories,omitempty"`
	MinFollowers *uint64  `json:"min_followers,omitempty"`
	MaxFollowers *uint64  `json:"max_followers,omitempty"`
}

// Value implements the driver.Valuer interface for CampaignTargeting
func (t CampaignTargeting) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements the sql.Scanner interface for CampaignTargeting
func (t *CampaignTargeting) Scan(value any) error {
	if value == nil {
		*t = CampaignTargeting{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into CampaignTargeting", value)
	}

	return json.Unmarshal(bytes, t)
}

// CampaignBrief holds the creative brief a brand publishes once creator
// selection is final. The brief is mutable and versionless: re-uploading
// overwrites.
type CampaignBrief struct {
	Title          *string  `json:"title,omitempty"`
	Focus          *string  `json:"focus,omitempty"`
	Dos            []string `json:"dos,omitempty"`
	Donts          []string `json:"donts,omitempty"`
	CallToAction   *string  `json:"call_to_action,omitempty"`
	SampleAssetURI *string  `json:"sample_asset_uri,omitempty"`
	ScriptTemplate *string  `json:"script_template,omitempty"`
}

// IsEmpty reports whether no brief fields have been set
func (b CampaignBrief) IsEmpty() bool {
	return b.Title == nil && b.Focus == nil && len(b.Dos) == 0 && len(b.Donts) == 0 &&
		b.CallToAction == nil && b.SampleAssetURI == nil && b.ScriptTemplate == nil
}

// Value implements the driver.Valuer interface for CampaignBrief
func (b CampaignBrief) Value() (driver.Value, error) {
	return json.Marshal(b)
}

// Scan implements the sql.Scanner interface for CampaignBrief
func (b *CampaignBrief) Scan(value any) error {
	if value == nil {
		*b = CampaignBrief{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into CampaignBrief", value)
	}

	return json.Unmarshal(bytes, b)
}

// Campaign represents a brand campaign in the database. Campaigns are never
// deleted, only archived.
type Campaign struct {
	ID      uint          `gorm:"primaryKey" json:"id"`
	UUID    uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_uuid" json:"uuid"`
	BrandID uint          `gorm:"not null;index:idx_campaigns_brand_id" json:"brand_id"`
	Phase   CampaignPhase `gorm:"type:campaign_phase;not null;default:'sourcing';index:idx_campaigns_phase" json:"phase"`

	Title       string            `gorm:"type:varchar(200);not null" json:"title"`
	Budget      uint64            `gorm:"not null" json:"budget"`
	CostPerView *float64          `json:"cost_per_view,omitempty"`
	Targeting   CampaignTargeting `gorm:"type:jsonb;not null" json:"targeting"`
	Brief       CampaignBrief     `gorm:"type:jsonb;not null" json:"brief"`

	AmountsFinalizedAt *time.Time `json:"amounts_finalized_at,omitempty"`
	BriefPublishedAt   *time.Time `json:"brief_published_at,omitempty"`
	ArchivedAt         *time.Time `json:"archived_at,omitempty"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_campaigns_created_at" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Relations
	Brand       *Brand       `gorm:"foreignKey:BrandID;references:ID" json:"brand,omitempty"`
	Engagements []Engagement `gorm:"foreignKey:CampaignID" json:"engagements,omitempty"`
}

// TableName returns the table name for the model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.Phase == "" {
		c.Phase = CampaignPhaseSourcing
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Campaign) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// AwaitingBrief reports the derived "awaiting_brief" view: selection is
// committed but no brief has been published yet
func (c *Campaign) AwaitingBrief() bool {
	return c.Phase == CampaignPhaseCreatorsAreFinal && c.BriefPublishedAt == nil
}

// EffectivePhase returns the stored phase, substituting the derived
// awaiting_brief view in the window between selection commit and brief upload
func (c *Campaign) EffectivePhase() CampaignPhase {
	if c.AwaitingBrief() {
		return CampaignPhaseAwaitingBrief
	}
	return c.Phase
}

// BriefVisible reports whether creators may read the brief fields
func (c *Campaign) BriefVisible() bool {
	return c.BriefPublishedAt != nil
}

// IsArchived reports whether the campaign has been archived
func (c *Campaign) IsArchived() bool {
	return c.ArchivedAt != nil
}

// CanTransitionTo checks if the campaign can move to the given stored phase
func (c *Campaign) CanTransitionTo(next CampaignPhase) bool {
	switch c.Phase {
	case CampaignPhaseSourcing:
		return next == CampaignPhaseCreatorsShortlisted
	case CampaignPhaseCreatorsShortlisted:
		return next == CampaignPhaseCreatorsAreFinal
	case CampaignPhaseCreatorsAreFinal:
		return next == CampaignPhaseBriefPublished
	case CampaignPhaseBriefPublished:
		return next == CampaignPhaseInProduction || next == CampaignPhaseCompleted
	case CampaignPhaseInProduction:
		return next == CampaignPhaseCompleted
	default:
		return false
	}
}

// CampaignFilter represents filter criteria for campaigns
type CampaignFilter struct {
	ID            *uint          `json:"id,omitempty"`
	UUID          *uuid.UUID     `json:"uuid,omitempty"`
	BrandID       *uint          `json:"brand_id,omitempty"`
	Phase         *CampaignPhase `json:"phase,omitempty"`
	Title         *string        `json:"title,omitempty"`
	Archived      *bool          `json:"archived,omitempty"`
	CreatedAfter  *time.Time     `json:"created_after,omitempty"`
	CreatedBefore *time.Time     `json:"created_before,omitempty"`
	MinBudget     *uint64        `json:"min_budget,omitempty"`
	MaxBudget     *uint64        `json:"max_budget,omitempty"`
}
