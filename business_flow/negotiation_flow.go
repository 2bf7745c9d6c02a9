package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/sidverse/gandaberunda/app/dto"
	"github.com/sidverse/gandaberunda/app/services"
	"github.com/sidverse/gandaberunda/models"
	"github.com/sidverse/gandaberunda/repository"
	"gorm.io/gorm"
)

// NegotiationFlow handles the fee negotiation between a creator and a brand
// on one engagement
type NegotiationFlow interface {
	SubmitBid(ctx context.Context, req *dto.SubmitBidRequest, metadata *ClientMetadata) (*dto.SubmitBidResponse, error)
	RespondToBid(ctx context.Context, req *dto.RespondToBidRequest, metadata *ClientMetadata) (*dto.RespondToBidResponse, error)
	AcceptDeal(ctx context.Context, req *dto.AcceptDealRequest, metadata *ClientMetadata) (*dto.AcceptDealResponse, error)
	RejectDeal(ctx context.Context, req *dto.RejectDealRequest, metadata *ClientMetadata) (*dto.RejectDealResponse, error)
}

// NegotiationFlowImpl implements the negotiation business flow
type NegotiationFlowImpl struct {
	engagementRepo repository.EngagementRepository
	creatorRepo    repository.CreatorRepository
	brandRepo      repository.BrandRepository
	auditRepo      repository.AuditLogRepository
	notifier       services.NotificationService
	snapshots      *SnapshotCache
	db             *gorm.DB
}

// NewNegotiationFlow creates a new negotiation flow instance
func NewNegotiationFlow(
	engagementRepo repository.EngagementRepository,
	creatorRepo repository.CreatorRepository,
	brandRepo repository.BrandRepository,
	auditRepo repository.AuditLogRepository,
	notifier services.NotificationService,
	snapshots *SnapshotCache,
	db *gorm.DB,
) NegotiationFlow {
	return &NegotiationFlowImpl{
		engagementRepo: engagementRepo,
		creatorRepo:    creatorRepo,
		brandRepo:      brandRepo,
		auditRepo:      auditRepo,
		notifier:       notifier,
		snapshots:      snapshots,
		db:             db,
	}
}

func (s *NegotiationFlowImpl) invalidateSnapshot(ctx context.Context, engagement *models.Engagement) {
	if engagement != nil && engagement.Campaign != nil {
		s.snapshots.Invalidate(ctx, engagement.Campaign.UUID.String())
	}
}

// SubmitBid handles a creator submitting (or re-submitting) a bid. A new bid
// supersedes any amount the brand had proposed, so the proposal columns are
// cleared in the same guarded update.
func (s *NegotiationFlowImpl) SubmitBid(ctx context.Context, req *dto.SubmitBidRequest, metadata *ClientMetadata) (*dto.SubmitBidResponse, error) {
	creator, err := getCreator(ctx, s.creatorRepo, req.CreatorID)
	if err != nil {
		return nil, NewBusinessError("CREATOR_LOOKUP_FAILED", KindNotFound, "Failed to lookup creator", err)
	}

	var engagement *models.Engagement
	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		engagement, err = getEngagement(txCtx, s.engagementRepo, req.UUID)
		if err != nil {
			return err
		}
		if engagement.CreatorID != creator.ID {
			return ErrEngagementAccessDenied
		}
		if engagement.ShortlistStatus != models.ShortlistStatusAccepted {
			return ErrCreatorNotAccepted
		}
		if err := campaignWritable(engagement.Campaign); err != nil {
			return err
		}
		if !engagement.NegotiationState.CanBid() {
			return ErrBidNotAllowed
		}

		observed := engagement.NegotiationState
		rows, err := s.engagementRepo.UpdateNegotiationIf(txCtx, engagement.ID, observed, map[string]any{
			"negotiation_state":     models.NegotiationStateBidPending,
			"creator_bid_amount":    req.Amount,
			"brand_proposed_amount": nil,
			"final_amount":          nil,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return s.classifyNegotiationRace(txCtx, engagement.ID)
		}
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Bid submission failed: %s", err.Error())
		_ = recordAudit(ctx, s.auditRepo, models.AuditActorCreator, nil, &creator.ID, models.AuditActionBidSubmitted, errMsg, false, &errMsg, metadata)
		return nil, wrapFlowError("BID_SUBMISSION_FAILED", "Bid submission failed", err)
	}

	s.invalidateSnapshot(ctx, engagement)

	msg := fmt.Sprintf("Bid of %d submitted on engagement %s", req.Amount, engagement.UUID.String())
	_ = recordAudit(ctx, s.auditRepo, models.AuditActorCreator, nil, &creator.ID, models.AuditActionBidSubmitted, msg, true, nil, metadata)

	return &dto.SubmitBidResponse{
		Message:          "Bid submitted successfully",
		NegotiationState: string(models.NegotiationStateBidPending),
		CreatorBidAmount: req.Amount,
	}, nil
}

// RespondToBid handles the brand's verdict on a pending bid: accept locks the
// creator's amount in, counter puts a proposal on the table, reject ends the
// negotiation.
func (s *NegotiationFlowImpl) RespondToBid(ctx context.Context, req *dto.RespondToBidRequest, metadata *ClientMetadata) (*dto.RespondToBidResponse, error) {
	brand, err := getBrand(ctx, s.brandRepo, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("BRAND_LOOKUP_FAILED", KindNotFound, "Failed to lookup brand", err)
	}

	auditAction := models.AuditActionBidAccepted
	switch req.Action {
	case "counter":
		auditAction = models.AuditActionBidCountered
	case "reject":
		auditAction = models.AuditActionBidRejected
	}

	var engagement *models.Engagement
	var nextState models.NegotiationState
	var finalAmount *uint64

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		engagement, err = getEngagement(txCtx, s.engagementRepo, req.UUID)
		if err != nil {
			return err
		}
		if engagement.Campaign == nil || engagement.Campaign.BrandID != brand.ID {
			return ErrEngagementAccessDenied
		}
		if err := campaignWritable(engagement.Campaign); err != nil {
			return err
		}
		if engagement.NegotiationState != models.NegotiationStateBidPending {
			return ErrNoBidPending
		}

		updates := map[string]any{}
		switch req.Action {
		case "accept":
			if engagement.CreatorBidAmount == nil || *engagement.CreatorBidAmount == 0 {
				return ErrNoAmountOnTable
			}
			nextState = models.NegotiationStateAmountFinalized
			finalAmount = engagement.CreatorBidAmount
			updates["negotiation_state"] = nextState
			updates["final_amount"] = *engagement.CreatorBidAmount
		case "counter":
			if req.Amount == nil {
				return ErrCounterAmountRequired
			}
			nextState = models.NegotiationStateAmountNegotiated
			updates["negotiation_state"] = nextState
			updates["brand_proposed_amount"] = *req.Amount
		case "reject":
			nextState = models.NegotiationStateRejected
			updates["negotiation_state"] = nextState
		default:
			return NewBusinessError("INVALID_NEGOTIATION_ACTION", KindValidation, "Unknown negotiation action", nil)
		}

		rows, err := s.engagementRepo.UpdateNegotiationIf(txCtx, engagement.ID, models.NegotiationStateBidPending, updates)
		if err != nil {
			return err
		}
		if rows == 0 {
			return s.classifyNegotiationRace(txCtx, engagement.ID)
		}
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Bid response failed: %s", err.Error())
		_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, auditAction, errMsg, false, &errMsg, metadata)
		return nil, wrapFlowError("BID_RESPONSE_FAILED", "Bid response failed", err)
	}

	s.invalidateSnapshot(ctx, engagement)

	msg := fmt.Sprintf("Bid %sed on engagement %s", req.Action, engagement.UUID.String())
	_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, auditAction, msg, true, nil, metadata)

	s.notifyAsync(services.NotificationEvent{
		Kind:           services.NotifyBidResponded,
		EngagementUUID: engagement.UUID.String(),
		CreatorID:      &engagement.CreatorID,
		Message:        fmt.Sprintf("The brand responded to your bid: %s", req.Action),
	})

	return &dto.RespondToBidResponse{
		Message:          "Bid response recorded",
		NegotiationState: string(nextState),
		FinalAmount:      finalAmount,
	}, nil
}

// AcceptDeal locks in the amount the brand proposed. Only valid while a
// brand proposal is on the table.
func (s *NegotiationFlowImpl) AcceptDeal(ctx context.Context, req *dto.AcceptDealRequest, metadata *ClientMetadata) (*dto.AcceptDealResponse, error) {
	creator, err := getCreator(ctx, s.creatorRepo, req.CreatorID)
	if err != nil {
		return nil, NewBusinessError("CREATOR_LOOKUP_FAILED", KindNotFound, "Failed to lookup creator", err)
	}

	var engagement *models.Engagement
	var finalAmount uint64

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		engagement, err = getEngagement(txCtx, s.engagementRepo, req.UUID)
		if err != nil {
			return err
		}
		if engagement.CreatorID != creator.ID {
			return ErrEngagementAccessDenied
		}
		if err := campaignWritable(engagement.Campaign); err != nil {
			return err
		}
		if engagement.NegotiationState != models.NegotiationStateAmountNegotiated {
			return ErrNoAmountOnTable
		}
		if engagement.BrandProposedAmount == nil || *engagement.BrandProposedAmount == 0 {
			return ErrNoAmountOnTable
		}

		finalAmount = *engagement.BrandProposedAmount
		rows, err := s.engagementRepo.UpdateNegotiationIf(txCtx, engagement.ID, models.NegotiationStateAmountNegotiated, map[string]any{
			"negotiation_state": models.NegotiationStateAmountFinalized,
			"final_amount":      finalAmount,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return s.classifyNegotiationRace(txCtx, engagement.ID)
		}
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Deal acceptance failed: %s", err.Error())
		_ = recordAudit(ctx, s.auditRepo, models.AuditActorCreator, nil, &creator.ID, models.AuditActionDealAccepted, errMsg, false, &errMsg, metadata)
		return nil, wrapFlowError("DEAL_ACCEPTANCE_FAILED", "Deal acceptance failed", err)
	}

	s.invalidateSnapshot(ctx, engagement)

	msg := fmt.Sprintf("Deal accepted at %d on engagement %s", finalAmount, engagement.UUID.String())
	_ = recordAudit(ctx, s.auditRepo, models.AuditActorCreator, nil, &creator.ID, models.AuditActionDealAccepted, msg, true, nil, metadata)

	if engagement.Campaign != nil {
		s.notifyAsync(services.NotificationEvent{
			Kind:           services.NotifyDealFinalized,
			EngagementUUID: engagement.UUID.String(),
			BrandID:        &engagement.Campaign.BrandID,
			Message:        fmt.Sprintf("Creator accepted the proposed amount of %d", finalAmount),
		})
	}

	return &dto.AcceptDealResponse{
		Message:          "Deal accepted",
		NegotiationState: string(models.NegotiationStateAmountFinalized),
		FinalAmount:      finalAmount,
	}, nil
}

// RejectDeal ends the negotiation from the creator side. Terminal; a new
// engagement is required to re-engage.
func (s *NegotiationFlowImpl) RejectDeal(ctx context.Context, req *dto.RejectDealRequest, metadata *ClientMetadata) (*dto.RejectDealResponse, error) {
	creator, err := getCreator(ctx, s.creatorRepo, req.CreatorID)
	if err != nil {
		return nil, NewBusinessError("CREATOR_LOOKUP_FAILED", KindNotFound, "Failed to lookup creator", err)
	}

	var engagement *models.Engagement
	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		engagement, err = getEngagement(txCtx, s.engagementRepo, req.UUID)
		if err != nil {
			return err
		}
		if engagement.CreatorID != creator.ID {
			return ErrEngagementAccessDenied
		}
		if err := campaignWritable(engagement.Campaign); err != nil {
			return err
		}
		if engagement.NegotiationState.IsTerminal() {
			return ErrEngagementTerminal
		}

		rows, err := s.engagementRepo.UpdateNegotiationIf(txCtx, engagement.ID, engagement.NegotiationState, map[string]any{
			"negotiation_state": models.NegotiationStateRejected,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return s.classifyNegotiationRace(txCtx, engagement.ID)
		}
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Deal rejection failed: %s", err.Error())
		_ = recordAudit(ctx, s.auditRepo, models.AuditActorCreator, nil, &creator.ID, models.AuditActionDealRejected, errMsg, false, &errMsg, metadata)
		return nil, wrapFlowError("DEAL_REJECTION_FAILED", "Deal rejection failed", err)
	}

	s.invalidateSnapshot(ctx, engagement)

	msg := fmt.Sprintf("Deal rejected on engagement %s", engagement.UUID.String())
	_ = recordAudit(ctx, s.auditRepo, models.AuditActorCreator, nil, &creator.ID, models.AuditActionDealRejected, msg, true, nil, metadata)

	return &dto.RejectDealResponse{
		Message:          "Deal rejected",
		NegotiationState: string(models.NegotiationStateRejected),
	}, nil
}

// classifyNegotiationRace re-reads an engagement after a zero-row guarded
// update to distinguish a lost race from a vanished row
func (s *NegotiationFlowImpl) classifyNegotiationRace(ctx context.Context, id uint) error {
	current, err := s.engagementRepo.ByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrEngagementNotFound
	}
	return ErrStaleState
}

func (s *NegotiationFlowImpl) notifyAsync(event services.NotificationEvent) {
	go func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.notifier.Notify(notifyCtx, event)
	}()
}
