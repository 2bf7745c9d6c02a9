package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sidverse/gandaberunda/utils"
	"gorm.io/gorm"
)

// NegotiationState represents the fee negotiation sub-state of an engagement
type NegotiationState string

const (
	NegotiationStateNone             NegotiationState = "none"
	NegotiationStateBidPending       NegotiationState = "bid_pending"
	NegotiationStateAmountNegotiated NegotiationState = "amount_negotiated"
	NegotiationStateAmountFinalized  NegotiationState = "amount_finalized"
	NegotiationStateRejected         NegotiationState = "rejected"
)

// String returns the string representation of the state
func (s NegotiationState) String() string {
	return string(s)
}

// Valid checks if the state is a member of the closed set
func (s NegotiationState) Valid() bool {
	switch s {
	case NegotiationStateNone, NegotiationStateBidPending,
		NegotiationStateAmountNegotiated, NegotiationStateAmountFinalized,
		NegotiationStateRejected:
		return true
	default:
		return false
	}
}

// IsFinalized reports whether the negotiated amount is authoritative
func (s NegotiationState) IsFinalized() bool {
	return s == NegotiationStateAmountFinalized
}

// IsTerminal reports whether no further negotiation transitions are defined
func (s NegotiationState) IsTerminal() bool {
	return s == NegotiationStateAmountFinalized || s == NegotiationStateRejected
}

// CanBid reports whether a creator may (re)submit a bid from this state
func (s NegotiationState) CanBid() bool {
	switch s {
	case NegotiationStateNone, NegotiationStateBidPending, NegotiationStateAmountNegotiated:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for NegotiationState
func (s *NegotiationState) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = NegotiationState(v)
	case []byte:
		*s = NegotiationState(string(v))
	default:
		return fmt.Errorf("cannot scan %T into NegotiationState", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for NegotiationState
func (s NegotiationState) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid NegotiationState: %s", s)
	}
	return string(s), nil
}

// ReviewState represents the script and content review sub-states of an engagement.
// ReviewStateNone means nothing has been submitted yet; ReviewStateLive is only
// reachable by the content sub-machine.
type ReviewState string

const (
	ReviewStateNone              ReviewState = "none"
	ReviewStatePending           ReviewState = "pending"
	ReviewStateApproved          ReviewState = "approved"
	ReviewStateRejected          ReviewState = "rejected"
	ReviewStateRevisionRequested ReviewState = "revision_requested"
	ReviewStateLive              ReviewState = "live"
)

// String returns the string representation of the state
func (s ReviewState) String() string {
	return string(s)
}

// Valid checks if the state is a member of the closed set
func (s ReviewState) Valid() bool {
	switch s {
	case ReviewStateNone, ReviewStatePending, ReviewStateApproved,
		ReviewStateRejected, ReviewStateRevisionRequested, ReviewStateLive:
		return true
	default:
		return false
	}
}

// NeedsResubmission reports whether the creator may resubmit after feedback
func (s ReviewState) NeedsResubmission() bool {
	return s == ReviewStateRejected || s == ReviewStateRevisionRequested
}

// Scan implements the sql.Scanner interface for ReviewState
func (s *ReviewState) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = ReviewState(v)
	case []byte:
		*s = ReviewState(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ReviewState", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ReviewState
func (s ReviewState) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ReviewState: %s", s)
	}
	return string(s), nil
}

// ReviewAction is the closed set of verdicts a brand may issue on a pending
// script or content submission
type ReviewAction string

const (
	ReviewActionApproved          ReviewAction = "approved"
	ReviewActionRejected          ReviewAction = "rejected"
	ReviewActionRevisionRequested ReviewAction = "revision_requested"
)

// Valid checks if the action is a member of the closed set
func (a ReviewAction) Valid() bool {
	switch a {
	case ReviewActionApproved, ReviewActionRejected, ReviewActionRevisionRequested:
		return true
	default:
		return false
	}
}

// State returns the review state the action transitions a pending submission to
func (a ReviewAction) State() ReviewState {
	return ReviewState(a)
}

// ShortlistStatus is the brand's verdict on a shortlisted creator
type ShortlistStatus string

const (
	ShortlistStatusPending  ShortlistStatus = "pending"
	ShortlistStatusAccepted ShortlistStatus = "accepted"
	ShortlistStatusRejected ShortlistStatus = "rejected"
)

// Valid checks if the status is a member of the closed set
func (s ShortlistStatus) Valid() bool {
	switch s {
	case ShortlistStatusPending, ShortlistStatusAccepted, ShortlistStatusRejected:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ShortlistStatus
func (s *ShortlistStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = ShortlistStatus(v)
	case []byte:
		*s = ShortlistStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ShortlistStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ShortlistStatus
func (s ShortlistStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ShortlistStatus: %s", s)
	}
	return string(s), nil
}

// Engagement represents one creator's participation in one campaign. The three
// sub-state columns are independently addressable so revision loops never have
// to re-derive prior history; forward progress is sequenced by precondition
// (negotiation finalized -> script approved -> content live).
type Engagement struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_engagements_uuid" json:"uuid"`
	CampaignID uint      `gorm:"not null;uniqueIndex:uk_engagements_campaign_creator;index:idx_engagements_campaign_id" json:"campaign_id"`
	CreatorID  uint      `gorm:"not null;uniqueIndex:uk_engagements_campaign_creator;index:idx_engagements_creator_id" json:"creator_id"`

	ShortlistStatus ShortlistStatus `gorm:"type:engagement_shortlist_status;not null;default:'pending'" json:"shortlist_status"`

	// Negotiation sub-machine
	NegotiationState    NegotiationState `gorm:"type:engagement_negotiation_state;not null;default:'none';index:idx_engagements_negotiation_state" json:"negotiation_state"`
	CreatorBidAmount    *uint64          `json:"creator_bid_amount,omitempty"`
	BrandProposedAmount *uint64          `json:"brand_proposed_amount,omitempty"`
	FinalAmount         *uint64          `json:"final_amount,omitempty"`

	// Script sub-machine
	ScriptState       ReviewState `gorm:"type:engagement_review_state;not null;default:'none';index:idx_engagements_script_state" json:"script_state"`
	ScriptContent     *string     `gorm:"type:text" json:"script_content,omitempty"`
	ScriptFeedback    *string     `gorm:"type:text" json:"script_feedback,omitempty"`
	ScriptSubmittedAt *time.Time  `json:"script_submitted_at,omitempty"`

	// Content sub-machine
	ContentState       ReviewState `gorm:"type:engagement_review_state;not null;default:'none';index:idx_engagements_content_state" json:"content_state"`
	ContentURI         *string     `gorm:"type:text" json:"content_uri,omitempty"`
	LiveURI            *string     `gorm:"type:text" json:"live_uri,omitempty"`
	ContentFeedback    *string     `gorm:"type:text" json:"content_feedback,omitempty"`
	ContentSubmittedAt *time.Time  `json:"content_submitted_at,omitempty"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Relations
	Campaign *Campaign `gorm:"foreignKey:CampaignID;references:ID" json:"campaign,omitempty"`
	Creator  *Creator  `gorm:"foreignKey:CreatorID;references:ID" json:"creator,omitempty"`
}

// TableName returns the table name for the model
func (Engagement) TableName() string {
	return "engagements"
}

// BeforeCreate is called before creating a new record
func (e *Engagement) BeforeCreate(tx *gorm.DB) error {
	if e.UUID == uuid.Nil {
		e.UUID = uuid.New()
	}
	if e.ShortlistStatus == "" {
		e.ShortlistStatus = ShortlistStatusPending
	}
	if e.NegotiationState == "" {
		e.NegotiationState = NegotiationStateNone
	}
	if e.ScriptState == "" {
		e.ScriptState = ReviewStateNone
	}
	if e.ContentState == "" {
		e.ContentState = ReviewStateNone
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (e *Engagement) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	e.UpdatedAt = &now
	return nil
}

// CanSubmitScript checks the script-submission precondition: the deal must be
// finalized, or the creator is resubmitting after reviewer feedback (the money
// was already finalized to get there).
func (e *Engagement) CanSubmitScript() bool {
	return e.NegotiationState.IsFinalized() || e.ScriptState.NeedsResubmission()
}

// CanUploadContent checks the content-upload precondition
func (e *Engagement) CanUploadContent() bool {
	return e.ScriptState == ReviewStateApproved || e.ContentState.NeedsResubmission()
}

// CanGoLive checks the go-live precondition
func (e *Engagement) CanGoLive() bool {
	return e.ContentState == ReviewStateApproved
}

// IsTerminal reports whether the engagement reached an end state: content is
// live, or either side rejected with no further action defined.
func (e *Engagement) IsTerminal() bool {
	if e.ContentState == ReviewStateLive {
		return true
	}
	if e.NegotiationState == NegotiationStateRejected {
		return true
	}
	return e.ShortlistStatus == ShortlistStatusRejected
}

// EngagementFilter represents filter criteria for engagements
type EngagementFilter struct {
	ID               *uint             `json:"id,omitempty"`
	UUID             *uuid.UUID        `json:"uuid,omitempty"`
	CampaignID       *uint             `json:"campaign_id,omitempty"`
	CreatorID        *uint             `json:"creator_id,omitempty"`
	ShortlistStatus  *ShortlistStatus  `json:"shortlist_status,omitempty"`
	NegotiationState *NegotiationState `json:"negotiation_state,omitempty"`
	ScriptState      *ReviewState      `json:"script_state,omitempty"`
	ContentState     *ReviewState      `json:"content_state,omitempty"`
	CreatedAfter     *time.Time        `json:"created_after,omitempty"`
	CreatedBefore    *time.Time        `json:"created_before,omitempty"`
}
