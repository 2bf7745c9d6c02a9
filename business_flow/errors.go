// Package businessflow contains the core business logic and use cases for the engagement workflow
package businessflow

import (
	"errors"
	"fmt"
)

// Error kinds drive the HTTP status mapping in the handler layer
const (
	KindPreconditionFailed = "PRECONDITION_FAILED"
	KindStaleState         = "STALE_STATE"
	KindNotFound           = "NOT_FOUND"
	KindForbidden          = "FORBIDDEN"
	KindValidation         = "VALIDATION_ERROR"
	KindInternal           = "INTERNAL_ERROR"
)

// Business flow error constants
var (
	// Actor lookup errors
	ErrBrandNotFound   = errors.New("brand not found")
	ErrCreatorNotFound = errors.New("creator not found")
	ErrAdminNotFound   = errors.New("admin not found")
	ErrActorInactive   = errors.New("actor is inactive")

	// Campaign errors
	ErrCampaignNotFound       = errors.New("campaign not found")
	ErrCampaignAccessDenied   = errors.New("campaign access denied")
	ErrCampaignArchived       = errors.New("campaign is archived")
	ErrCampaignCompleted      = errors.New("campaign is already completed")
	ErrShortlistClosed        = errors.New("creator selection is already committed")
	ErrAmountsNotFinalized    = errors.New("creator amounts are not finalized")
	ErrSelectionNotFinal      = errors.New("creator selection is not final")
	ErrCreatorsNotShortlisted = errors.New("no creator shortlist has been uploaded")
	ErrBriefEmpty             = errors.New("brief has no fields set")
	ErrBriefNotPublished      = errors.New("brief is not published")
	ErrEngagementsOutstanding = errors.New("engagements that could still go live remain")
	ErrShortlistBatchTooLarge = errors.New("shortlist batch exceeds the allowed size")

	// Engagement errors
	ErrEngagementNotFound     = errors.New("engagement not found")
	ErrEngagementAccessDenied = errors.New("engagement access denied")
	ErrEngagementTerminal     = errors.New("engagement reached a terminal state")
	ErrCreatorNotAccepted     = errors.New("creator was not accepted on this campaign")

	// Negotiation errors
	ErrBidNotAllowed           = errors.New("negotiation is closed for bidding")
	ErrNoBidPending            = errors.New("no bid is pending a response")
	ErrNoAmountOnTable         = errors.New("no amount is on the table to accept")
	ErrCounterAmountRequired   = errors.New("counter proposal requires an amount")
	ErrNegotiationNotFinalized = errors.New("negotiated amount is not finalized")

	// Script errors
	ErrScriptNotSubmittable = errors.New("script cannot be submitted in current state")
	ErrScriptNotApproved    = errors.New("script is not yet approved")

	// Content errors
	ErrContentNotUploadable = errors.New("content cannot be uploaded in current state")
	ErrContentNotApproved   = errors.New("content is not yet approved")

	// Concurrency
	ErrStaleState = errors.New("state changed since it was read")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")

	ErrFeedbackRequired = errors.New("feedback is required for this review action")
)

// BusinessError wraps a flow failure with a machine-readable code and kind
type BusinessError struct {
	Code    string
	Kind    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, kind, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// KindOf extracts the error kind from a flow error chain, defaulting to
// INTERNAL_ERROR for anything unclassified
func KindOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

// CodeOf extracts the error code from a flow error chain
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return KindInternal
}

func IsBrandNotFound(err error) bool {
	return errors.Is(err, ErrBrandNotFound)
}

func IsCreatorNotFound(err error) bool {
	return errors.Is(err, ErrCreatorNotFound)
}

func IsAdminNotFound(err error) bool {
	return errors.Is(err, ErrAdminNotFound)
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsCampaignAccessDenied(err error) bool {
	return errors.Is(err, ErrCampaignAccessDenied)
}

func IsCampaignArchived(err error) bool {
	return errors.Is(err, ErrCampaignArchived)
}

func IsShortlistClosed(err error) bool {
	return errors.Is(err, ErrShortlistClosed)
}

func IsAmountsNotFinalized(err error) bool {
	return errors.Is(err, ErrAmountsNotFinalized)
}

func IsSelectionNotFinal(err error) bool {
	return errors.Is(err, ErrSelectionNotFinal)
}

func IsCreatorsNotShortlisted(err error) bool {
	return errors.Is(err, ErrCreatorsNotShortlisted)
}

func IsBriefNotPublished(err error) bool {
	return errors.Is(err, ErrBriefNotPublished)
}

func IsEngagementsOutstanding(err error) bool {
	return errors.Is(err, ErrEngagementsOutstanding)
}

func IsEngagementNotFound(err error) bool {
	return errors.Is(err, ErrEngagementNotFound)
}

func IsEngagementAccessDenied(err error) bool {
	return errors.Is(err, ErrEngagementAccessDenied)
}

func IsEngagementTerminal(err error) bool {
	return errors.Is(err, ErrEngagementTerminal)
}

func IsBidNotAllowed(err error) bool {
	return errors.Is(err, ErrBidNotAllowed)
}

func IsNoBidPending(err error) bool {
	return errors.Is(err, ErrNoBidPending)
}

func IsNoAmountOnTable(err error) bool {
	return errors.Is(err, ErrNoAmountOnTable)
}

func IsNegotiationNotFinalized(err error) bool {
	return errors.Is(err, ErrNegotiationNotFinalized)
}

func IsScriptNotSubmittable(err error) bool {
	return errors.Is(err, ErrScriptNotSubmittable)
}

func IsScriptNotApproved(err error) bool {
	return errors.Is(err, ErrScriptNotApproved)
}

func IsContentNotUploadable(err error) bool {
	return errors.Is(err, ErrContentNotUploadable)
}

func IsContentNotApproved(err error) bool {
	return errors.Is(err, ErrContentNotApproved)
}

func IsStaleState(err error) bool {
	return errors.Is(err, ErrStaleState)
}

func IsFeedbackRequired(err error) bool {
	return errors.Is(err, ErrFeedbackRequired)
}

// kindFor classifies a sentinel error into its error kind
func kindFor(err error) string {
	switch {
	case errors.Is(err, ErrStaleState):
		return KindStaleState
	case errors.Is(err, ErrBrandNotFound),
		errors.Is(err, ErrCreatorNotFound),
		errors.Is(err, ErrAdminNotFound),
		errors.Is(err, ErrCampaignNotFound),
		errors.Is(err, ErrEngagementNotFound):
		return KindNotFound
	case errors.Is(err, ErrCampaignAccessDenied),
		errors.Is(err, ErrEngagementAccessDenied),
		errors.Is(err, ErrActorInactive):
		return KindForbidden
	case errors.Is(err, ErrCounterAmountRequired),
		errors.Is(err, ErrFeedbackRequired),
		errors.Is(err, ErrBriefEmpty),
		errors.Is(err, ErrInvalidPage),
		errors.Is(err, ErrInvalidPageSize),
		errors.Is(err, ErrShortlistBatchTooLarge):
		return KindValidation
	case errors.Is(err, ErrCampaignArchived),
		errors.Is(err, ErrCampaignCompleted),
		errors.Is(err, ErrShortlistClosed),
		errors.Is(err, ErrAmountsNotFinalized),
		errors.Is(err, ErrSelectionNotFinal),
		errors.Is(err, ErrCreatorsNotShortlisted),
		errors.Is(err, ErrBriefNotPublished),
		errors.Is(err, ErrEngagementsOutstanding),
		errors.Is(err, ErrEngagementTerminal),
		errors.Is(err, ErrCreatorNotAccepted),
		errors.Is(err, ErrBidNotAllowed),
		errors.Is(err, ErrNoBidPending),
		errors.Is(err, ErrNoAmountOnTable),
		errors.Is(err, ErrNegotiationNotFinalized),
		errors.Is(err, ErrScriptNotSubmittable),
		errors.Is(err, ErrScriptNotApproved),
		errors.Is(err, ErrContentNotUploadable),
		errors.Is(err, ErrContentNotApproved):
		return KindPreconditionFailed
	default:
		return KindInternal
	}
}

// wrapFlowError wraps err in a BusinessError classified by sentinel, leaving
// already-classified errors untouched
func wrapFlowError(code, message string, err error) error {
	var be *BusinessError
	if errors.As(err, &be) {
		return err
	}
	return NewBusinessError(code, kindFor(err), message, err)
}
