package dto

// EngagementItem is the wire representation of one engagement
type EngagementItem struct {
	ID                  uint    `json:"id"`
	UUID                string  `json:"uuid"`
	CampaignUUID        string  `json:"campaign_uuid,omitempty"`
	CampaignTitle       string  `json:"campaign_title,omitempty"`
	CreatorID           uint    `json:"creator_id"`
	CreatorHandle       string  `json:"creator_handle,omitempty"`
	ShortlistStatus     string  `json:"shortlist_status"`
	NegotiationState    string  `json:"negotiation_state"`
	CreatorBidAmount    *uint64 `json:"creator_bid_amount,omitempty"`
	BrandProposedAmount *uint64 `json:"brand_proposed_amount,omitempty"`
	FinalAmount         *uint64 `json:"final_amount,omitempty"`
	ScriptState         string  `json:"script_state"`
	ScriptContent       *string `json:"script_content,omitempty"`
	ScriptFeedback      *string `json:"script_feedback,omitempty"`
	ContentState        string  `json:"content_state"`
	ContentURI          *string `json:"content_uri,omitempty"`
	LiveURI             *string `json:"live_uri,omitempty"`
	ContentFeedback     *string `json:"content_feedback,omitempty"`
	CreatedAt           string  `json:"created_at"`
}

// ListEngagementsResponse represents a page of engagements
type ListEngagementsResponse struct {
	Message string           `json:"message"`
	Items   []EngagementItem `json:"items"`
	Total   int64            `json:"total"`
}

// SubmitBidRequest carries a creator's bid on an engagement
type SubmitBidRequest struct {
	CreatorID uint   `json:"-"`
	UUID      string `json:"-" validate:"required,uuid4"`
	Amount    uint64 `json:"amount" validate:"required,gt=0"`
}

// SubmitBidResponse represents the bid submission result
type SubmitBidResponse struct {
	Message          string `json:"message"`
	NegotiationState string `json:"negotiation_state"`
	CreatorBidAmount uint64 `json:"creator_bid_amount"`
}

// RespondToBidRequest carries the brand's verdict on a pending bid.
// Amount is required for counter, ignored otherwise.
type RespondToBidRequest struct {
	BrandID uint    `json:"-"`
	UUID    string  `json:"-" validate:"required,uuid4"`
	Action  string  `json:"action" validate:"required,oneof=accept counter reject"`
	Amount  *uint64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
}

// RespondToBidResponse represents the brand's negotiation response result
type RespondToBidResponse struct {
	Message          string  `json:"message"`
	NegotiationState string  `json:"negotiation_state"`
	FinalAmount      *uint64 `json:"final_amount,omitempty"`
}

// AcceptDealRequest locks the negotiated amount in from the creator side
type AcceptDealRequest struct {
	CreatorID uint   `json:"-"`
	UUID      string `json:"-" validate:"required,uuid4"`
}

// AcceptDealResponse represents the deal acceptance result
type AcceptDealResponse struct {
	Message          string `json:"message"`
	NegotiationState string `json:"negotiation_state"`
	FinalAmount      uint64 `json:"final_amount"`
}

// RejectDealRequest ends the negotiation from the creator side
type RejectDealRequest struct {
	CreatorID uint   `json:"-"`
	UUID      string `json:"-" validate:"required,uuid4"`
}

// RejectDealResponse represents the deal rejection result
type RejectDealResponse struct {
	Message          string `json:"message"`
	NegotiationState string `json:"negotiation_state"`
}

// SubmitScriptRequest carries a creator's script submission
type SubmitScriptRequest struct {
	CreatorID uint   `json:"-"`
	UUID      string `json:"-" validate:"required,uuid4"`
	Content   string `json:"content" validate:"required,min=1"`
}

// SubmitScriptResponse represents the script submission result
type SubmitScriptResponse struct {
	Message       string `json:"message"`
	ScriptState   string `json:"script_state"`
	CampaignPhase string `json:"campaign_phase"`
}

// ReviewRequest carries a brand's verdict on one pending submission.
// Feedback is required for reject and revision_requested.
type ReviewRequest struct {
	BrandID  uint    `json:"-"`
	UUID     string  `json:"-" validate:"required,uuid4"`
	Action   string  `json:"action" validate:"required,oneof=approved rejected revision_requested"`
	Feedback *string `json:"feedback,omitempty"`
}

// ReviewResponse represents a single review outcome. Updated is false when
// there was no pending submission to review (idempotent no-op).
type ReviewResponse struct {
	Message string `json:"message"`
	State   string `json:"state"`
	Updated bool   `json:"updated"`
}

// BatchReviewRequest carries per-creator verdicts for one campaign
type BatchReviewRequest struct {
	BrandID uint               `json:"-"`
	UUID    string             `json:"-" validate:"required,uuid4"`
	Updates []BatchReviewEntry `json:"updates" validate:"required,min=1,dive"`
}

// BatchReviewEntry is one verdict in a batch review
type BatchReviewEntry struct {
	CreatorID uint    `json:"creator_id" validate:"required"`
	Action    string  `json:"action" validate:"required,oneof=approved rejected revision_requested"`
	Feedback  *string `json:"feedback,omitempty"`
}

// BatchReviewResponse reports per-outcome counts; stale entries never abort
// the batch
type BatchReviewResponse struct {
	Message                string `json:"message"`
	ApprovedCount          int    `json:"approved_count"`
	RejectedCount          int    `json:"rejected_count"`
	RevisionRequestedCount int    `json:"revision_requested_count"`
	StaleCount             int    `json:"stale_count"`
}

// UploadContentRequest carries a creator's content submission
type UploadContentRequest struct {
	CreatorID  uint   `json:"-"`
	UUID       string `json:"-" validate:"required,uuid4"`
	ContentURI string `json:"content_uri" validate:"required,uri"`
}

// UploadContentResponse represents the content upload result
type UploadContentResponse struct {
	Message      string `json:"message"`
	ContentState string `json:"content_state"`
}

// GoLiveRequest publishes approved content
type GoLiveRequest struct {
	CreatorID uint   `json:"-"`
	UUID      string `json:"-" validate:"required,uuid4"`
	LiveURI   string `json:"live_uri" validate:"required,uri"`
}

// GoLiveResponse represents the go-live result
type GoLiveResponse struct {
	Message      string `json:"message"`
	ContentState string `json:"content_state"`
	LiveURI      string `json:"live_uri"`
}
