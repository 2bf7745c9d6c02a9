package dto

// TargetingDTO mirrors the campaign targeting spec on the wire
type TargetingDTO struct {
	Categories   []string `json:"categories,omitempty"`
	MinFollowers *uint64  `json:"min_followers,omitempty" validate:"omitempty,gt=0"`
	MaxFollowers *uint64  `json:"max_followers,omitempty" validate:"omitempty,gtfield=MinFollowers"`
}

// BriefDTO mirrors the campaign brief on the wire. Re-publishing overwrites
// the stored brief wholesale.
type BriefDTO struct {
	Title          *string  `json:"title,omitempty" validate:"omitempty,max=200"`
	Focus          *string  `json:"focus,omitempty"`
	Dos            []string `json:"dos,omitempty"`
	Donts          []string `json:"donts,omitempty"`
	CallToAction   *string  `json:"call_to_action,omitempty"`
	SampleAssetURI *string  `json:"sample_asset_uri,omitempty" validate:"omitempty,uri"`
	ScriptTemplate *string  `json:"script_template,omitempty"`
}

// CreateCampaignRequest represents a brand creating a campaign
type CreateCampaignRequest struct {
	BrandID     uint          `json:"-"`
	Title       string        `json:"title" validate:"required,min=3,max=200"`
	Budget      uint64        `json:"budget" validate:"required,gt=0"`
	CostPerView *float64      `json:"cost_per_view,omitempty" validate:"omitempty,gt=0"`
	Targeting   *TargetingDTO `json:"targeting,omitempty"`
}

// CreateCampaignResponse represents the result of campaign creation
type CreateCampaignResponse struct {
	Message   string `json:"message"`
	ID        uint   `json:"id"`
	UUID      string `json:"uuid"`
	Phase     string `json:"phase"`
	CreatedAt string `json:"created_at"`
}

// ListCampaignsRequest represents campaign listing with filters
type ListCampaignsRequest struct {
	BrandID  uint    `json:"-"`
	Phase    *string `json:"phase,omitempty" validate:"omitempty,oneof=sourcing creators_shortlisted creators_are_final awaiting_brief brief_published in_production completed"`
	Title    *string `json:"title,omitempty"`
	Archived *bool   `json:"archived,omitempty"`
	Page     int     `json:"page" validate:"omitempty,min=1"`
	PageSize int     `json:"page_size" validate:"omitempty,min=1,max=100"`
}

// CampaignItem is one campaign in a listing or snapshot
type CampaignItem struct {
	ID               uint          `json:"id"`
	UUID             string        `json:"uuid"`
	Title            string        `json:"title"`
	Phase            string        `json:"phase"`
	EffectivePhase   string        `json:"effective_phase"`
	Budget           uint64        `json:"budget"`
	CostPerView      *float64      `json:"cost_per_view,omitempty"`
	Targeting        *TargetingDTO `json:"targeting,omitempty"`
	Brief            *BriefDTO     `json:"brief,omitempty"`
	BriefPublishedAt *string       `json:"brief_published_at,omitempty"`
	ArchivedAt       *string       `json:"archived_at,omitempty"`
	CreatedAt        string        `json:"created_at"`
}

// ListCampaignsResponse represents a page of campaigns
type ListCampaignsResponse struct {
	Message string         `json:"message"`
	Items   []CampaignItem `json:"items"`
	Total   int64          `json:"total"`
}

// EngagementCountsDTO summarizes engagement sub-states for a campaign snapshot
type EngagementCountsDTO struct {
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

// GetCampaignResponse is the full campaign snapshot for the owning brand
type GetCampaignResponse struct {
	Message   string              `json:"message"`
	Campaign  CampaignItem        `json:"campaign"`
	Counts    EngagementCountsDTO `json:"counts"`
	FromCache bool                `json:"from_cache"`
}

// ArchiveCampaignRequest archives a campaign
type ArchiveCampaignRequest struct {
	BrandID uint   `json:"-"`
	UUID    string `json:"-" validate:"required,uuid4"`
}

// ArchiveCampaignResponse represents the archive result
type ArchiveCampaignResponse struct {
	Message    string `json:"message"`
	ArchivedAt string `json:"archived_at"`
}

// PublishBriefRequest publishes or overwrites a campaign brief
type PublishBriefRequest struct {
	BrandID uint     `json:"-"`
	UUID    string   `json:"-" validate:"required,uuid4"`
	Brief   BriefDTO `json:"brief" validate:"required"`
}

// PublishBriefResponse represents the brief publication result
type PublishBriefResponse struct {
	Message          string `json:"message"`
	Phase            string `json:"phase"`
	BriefPublishedAt string `json:"brief_published_at"`
}

// RespondCreatorsRequest carries the brand's accept/reject verdicts on
// shortlisted creators
type RespondCreatorsRequest struct {
	BrandID   uint                     `json:"-"`
	UUID      string                   `json:"-" validate:"required,uuid4"`
	Responses []CreatorResponseVerdict `json:"responses" validate:"required,min=1,dive"`
}

// CreatorResponseVerdict is one accept/reject decision
type CreatorResponseVerdict struct {
	CreatorID uint   `json:"creator_id" validate:"required"`
	Action    string `json:"action" validate:"required,oneof=accept reject"`
}

// RespondCreatorsResponse reports per-outcome counts; stale entries are
// skipped, never fatal
type RespondCreatorsResponse struct {
	Message       string `json:"message"`
	AcceptedCount int    `json:"accepted_count"`
	RejectedCount int    `json:"rejected_count"`
	StaleCount    int    `json:"stale_count"`
}

// FinalizeAmountsRequest marks creator amounts as finalized (idempotent)
type FinalizeAmountsRequest struct {
	BrandID uint   `json:"-"`
	UUID    string `json:"-" validate:"required,uuid4"`
}

// FinalizeAmountsResponse represents the finalize-amounts result
type FinalizeAmountsResponse struct {
	Message            string `json:"message"`
	AmountsFinalizedAt string `json:"amounts_finalized_at"`
	AlreadyFinalized   bool   `json:"already_finalized"`
}

// SubmitSelectionRequest commits the creator selection (idempotent)
type SubmitSelectionRequest struct {
	BrandID uint   `json:"-"`
	UUID    string `json:"-" validate:"required,uuid4"`
}

// SubmitSelectionResponse represents the selection commit result
type SubmitSelectionResponse struct {
	Message          string `json:"message"`
	Phase            string `json:"phase"`
	AlreadyCommitted bool   `json:"already_committed"`
}

// CompleteCampaignRequest marks a campaign completed
type CompleteCampaignRequest struct {
	BrandID uint   `json:"-"`
	UUID    string `json:"-" validate:"required,uuid4"`
}

// CompleteCampaignResponse represents the completion result
type CompleteCampaignResponse struct {
	Message string `json:"message"`
	Phase   string `json:"phase"`
}
