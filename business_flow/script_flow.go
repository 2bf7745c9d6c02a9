package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/sidverse/gandaberunda/app/dto"
	"github.com/sidverse/gandaberunda/app/services"
	"github.com/sidverse/gandaberunda/models"
	"github.com/sidverse/gandaberunda/repository"
	"github.com/sidverse/gandaberunda/utils"
	"gorm.io/gorm"
)

// ScriptFlow handles script submission and review on engagements
type ScriptFlow interface {
	SubmitScript(ctx context.Context, req *dto.SubmitScriptRequest, metadata *ClientMetadata) (*dto.SubmitScriptResponse, error)
	ReviewScript(ctx context.Context, req *dto.ReviewRequest, metadata *ClientMetadata) (*dto.ReviewResponse, error)
	BatchReviewScripts(ctx context.Context, req *dto.BatchReviewRequest, metadata *ClientMetadata) (*dto.BatchReviewResponse, error)
}

// ScriptFlowImpl implements the script business flow
type ScriptFlowImpl struct {
	engagementRepo repository.EngagementRepository
	campaignRepo   repository.CampaignRepository
	creatorRepo    repository.CreatorRepository
	brandRepo      repository.BrandRepository
	auditRepo      repository.AuditLogRepository
	notifier       services.NotificationService
	snapshots      *SnapshotCache
	db             *gorm.DB
}

// NewScriptFlow creates a new script flow instance
func NewScriptFlow(
	engagementRepo repository.EngagementRepository,
	campaignRepo repository.CampaignRepository,
	creatorRepo repository.CreatorRepository,
	brandRepo repository.BrandRepository,
	auditRepo repository.AuditLogRepository,
	notifier services.NotificationService,
	snapshots *SnapshotCache,
	db *gorm.DB,
) ScriptFlow {
	return &ScriptFlowImpl{
		engagementRepo: engagementRepo,
		campaignRepo:   campaignRepo,
		creatorRepo:    creatorRepo,
		brandRepo:      brandRepo,
		auditRepo:      auditRepo,
		notifier:       notifier,
		snapshots:      snapshots,
		db:             db,
	}
}

// SubmitScript handles a creator submitting a script draft. The first script
// submitted after the brief is published moves the campaign into
// in_production; the phase transition is guarded so concurrent submissions
// cannot apply it twice.
func (s *ScriptFlowImpl) SubmitScript(ctx context.Context, req *dto.SubmitScriptRequest, metadata *ClientMetadata) (*dto.SubmitScriptResponse, error) {
	creator, err := getCreator(ctx, s.creatorRepo, req.CreatorID)
	if err != nil {
		return nil, NewBusinessError("CREATOR_LOOKUP_FAILED", KindNotFound, "Failed to lookup creator", err)
	}

	var engagement *models.Engagement
	var campaignPhase models.CampaignPhase

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		engagement, err = getEngagement(txCtx, s.engagementRepo, req.UUID)
		if err != nil {
			return err
		}
		if engagement.CreatorID != creator.ID {
			return ErrEngagementAccessDenied
		}
		campaign := engagement.Campaign
		if err := campaignWritable(campaign); err != nil {
			return err
		}
		if !campaign.BriefVisible() {
			return ErrBriefNotPublished
		}
		if engagement.IsTerminal() {
			return ErrEngagementTerminal
		}
		if !engagement.CanSubmitScript() {
			if !engagement.NegotiationState.IsFinalized() {
				return ErrNegotiationNotFinalized
			}
			return ErrScriptNotSubmittable
		}

		rows, err := s.engagementRepo.UpdateScriptIf(txCtx, engagement.ID, engagement.ScriptState, map[string]any{
			"script_state":        models.ReviewStatePending,
			"script_content":      req.Content,
			"script_feedback":     nil,
			"script_submitted_at": utils.UTCNow(),
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrStaleState
		}

		// First script after brief publication moves the campaign into
		// production. Zero rows here just means another submission won.
		campaignPhase = campaign.Phase
		if campaign.Phase == models.CampaignPhaseBriefPublished {
			moved, err := s.campaignRepo.UpdatePhaseIf(txCtx, campaign.ID, models.CampaignPhaseBriefPublished, map[string]any{
				"phase": models.CampaignPhaseInProduction,
			})
			if err != nil {
				return err
			}
			if moved > 0 {
				campaignPhase = models.CampaignPhaseInProduction
			}
		}
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Script submission failed: %s", err.Error())
		_ = recordAudit(ctx, s.auditRepo, models.AuditActorCreator, nil, &creator.ID, models.AuditActionScriptSubmitted, errMsg, false, &errMsg, metadata)
		return nil, wrapFlowError("SCRIPT_SUBMISSION_FAILED", "Script submission failed", err)
	}

	if engagement.Campaign != nil {
		s.snapshots.Invalidate(ctx, engagement.Campaign.UUID.String())
	}

	msg := fmt.Sprintf("Script submitted on engagement %s", engagement.UUID.String())
	_ = recordAudit(ctx, s.auditRepo, models.AuditActorCreator, nil, &creator.ID, models.AuditActionScriptSubmitted, msg, true, nil, metadata)

	return &dto.SubmitScriptResponse{
		Message:       "Script submitted for review",
		ScriptState:   string(models.ReviewStatePending),
		CampaignPhase: string(campaignPhase),
	}, nil
}

// ReviewScript handles the brand's verdict on a pending script. Reviewing an
// engagement with no pending script is a no-op, not an error: the second of
// two concurrent identical reviews simply updates zero rows.
func (s *ScriptFlowImpl) ReviewScript(ctx context.Context, req *dto.ReviewRequest, metadata *ClientMetadata) (*dto.ReviewResponse, error) {
	brand, err := getBrand(ctx, s.brandRepo, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("BRAND_LOOKUP_FAILED", KindNotFound, "Failed to lookup brand", err)
	}

	action := models.ReviewAction(req.Action)
	if err := validateReview(action, req.Feedback); err != nil {
		return nil, NewBusinessError("SCRIPT_REVIEW_VALIDATION_FAILED", KindValidation, "Script review validation failed", err)
	}

	var engagement *models.Engagement
	var updated bool

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

		rows, err := s.engagementRepo.UpdateScriptIf(txCtx, engagement.ID, models.ReviewStatePending, map[string]any{
			"script_state":    action.State(),
			"script_feedback": req.Feedback,
		})
		if err != nil {
			return err
		}
		updated = rows > 0
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Script review failed: %s", err.Error())
		_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, models.AuditActionScriptReviewed, errMsg, false, &errMsg, metadata)
		return nil, wrapFlowError("SCRIPT_REVIEW_FAILED", "Script review failed", err)
	}

	if !updated {
		return &dto.ReviewResponse{
			Message: "No pending script to review",
			State:   string(engagement.ScriptState),
			Updated: false,
		}, nil
	}

	msg := fmt.Sprintf("Script %s on engagement %s", req.Action, engagement.UUID.String())
	_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, models.AuditActionScriptReviewed, msg, true, nil, metadata)

	s.notifyAsync(services.NotificationEvent{
		Kind:           services.NotifyScriptReviewed,
		EngagementUUID: engagement.UUID.String(),
		CreatorID:      &engagement.CreatorID,
		Message:        fmt.Sprintf("Your script was reviewed: %s", req.Action),
	})

	return &dto.ReviewResponse{
		Message: "Script review recorded",
		State:   string(action.State()),
		Updated: true,
	}, nil
}

// BatchReviewScripts applies per-creator verdicts for one campaign. Entries
// whose script is no longer pending count as stale; the batch never aborts.
func (s *ScriptFlowImpl) BatchReviewScripts(ctx context.Context, req *dto.BatchReviewRequest, metadata *ClientMetadata) (*dto.BatchReviewResponse, error) {
	brand, err := getBrand(ctx, s.brandRepo, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("BRAND_LOOKUP_FAILED", KindNotFound, "Failed to lookup brand", err)
	}

	campaign, err := getOwnedCampaign(ctx, s.campaignRepo, req.UUID, brand.ID)
	if err != nil {
		return nil, wrapFlowError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if err := campaignWritable(campaign); err != nil {
		return nil, wrapFlowError("SCRIPT_BATCH_REVIEW_FAILED", "Script batch review failed", err)
	}

	resp := &dto.BatchReviewResponse{Message: "Script batch review completed"}

	for _, entry := range req.Updates {
		action := models.ReviewAction(entry.Action)
		if err := validateReview(action, entry.Feedback); err != nil {
			return nil, NewBusinessError("SCRIPT_REVIEW_VALIDATION_FAILED", KindValidation,
				fmt.Sprintf("Invalid review entry for creator %d", entry.CreatorID), err)
		}

		engagement, err := s.engagementRepo.ByCampaignAndCreator(ctx, campaign.ID, entry.CreatorID)
		if err != nil {
			return nil, wrapFlowError("SCRIPT_BATCH_REVIEW_FAILED", "Script batch review failed", err)
		}
		if engagement == nil {
			resp.StaleCount++
			continue
		}

		rows, err := s.engagementRepo.UpdateScriptIf(ctx, engagement.ID, models.ReviewStatePending, map[string]any{
			"script_state":    action.State(),
			"script_feedback": entry.Feedback,
		})
		if err != nil {
			return nil, wrapFlowError("SCRIPT_BATCH_REVIEW_FAILED", "Script batch review failed", err)
		}
		if rows == 0 {
			resp.StaleCount++
			continue
		}

		switch action {
		case models.ReviewActionApproved:
			resp.ApprovedCount++
		case models.ReviewActionRejected:
			resp.RejectedCount++
		case models.ReviewActionRevisionRequested:
			resp.RevisionRequestedCount++
		}

		s.notifyAsync(services.NotificationEvent{
			Kind:           services.NotifyScriptReviewed,
			EngagementUUID: engagement.UUID.String(),
			CreatorID:      &engagement.CreatorID,
			Message:        fmt.Sprintf("Your script was reviewed: %s", entry.Action),
		})
	}

	msg := fmt.Sprintf("Batch script review on campaign %s: %d approved, %d rejected, %d revisions, %d stale",
		campaign.UUID.String(), resp.ApprovedCount, resp.RejectedCount, resp.RevisionRequestedCount, resp.StaleCount)
	_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, models.AuditActionScriptReviewed, msg, true, nil, metadata)

	return resp, nil
}

func (s *ScriptFlowImpl) notifyAsync(event services.NotificationEvent) {
	go func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.notifier.Notify(notifyCtx, event)
	}()
}

// validateReview rejects unknown actions and negative verdicts without
// feedback
func validateReview(action models.ReviewAction, feedback *string) error {
	if !action.Valid() {
		return fmt.Errorf("unknown review action %q", action)
	}
	if action != models.ReviewActionApproved && (feedback == nil || *feedback == "") {
		return ErrFeedbackRequired
	}
	return nil
}
