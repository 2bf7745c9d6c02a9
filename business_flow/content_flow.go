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

// ContentFlow handles content upload, review and publication on engagements
type ContentFlow interface {
	UploadContent(ctx context.Context, req *dto.UploadContentRequest, metadata *ClientMetadata) (*dto.UploadContentResponse, error)
	ReviewContent(ctx context.Context, req *dto.ReviewRequest, metadata *ClientMetadata) (*dto.ReviewResponse, error)
	BatchReviewContents(ctx context.Context, req *dto.BatchReviewRequest, metadata *ClientMetadata) (*dto.BatchReviewResponse, error)
	GoLive(ctx context.Context, req *dto.GoLiveRequest, metadata *ClientMetadata) (*dto.GoLiveResponse, error)
}

// ContentFlowImpl implements the content business flow
type ContentFlowImpl struct {
	engagementRepo repository.EngagementRepository
	campaignRepo   repository.CampaignRepository
	creatorRepo    repository.CreatorRepository
	brandRepo      repository.BrandRepository
	auditRepo      repository.AuditLogRepository
	notifier       services.NotificationService
	snapshots      *SnapshotCache
	db             *gorm.DB
}

// NewContentFlow creates a new content flow instance
func NewContentFlow(
	engagementRepo repository.EngagementRepository,
	campaignRepo repository.CampaignRepository,
	creatorRepo repository.CreatorRepository,
	brandRepo repository.BrandRepository,
	auditRepo repository.AuditLogRepository,
	notifier services.NotificationService,
	snapshots *SnapshotCache,
	db *gorm.DB,
) ContentFlow {
	return &ContentFlowImpl{
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

// UploadContent handles a creator submitting produced content for review.
// Requires an approved script, or a prior content verdict that asked for
// another round.
func (s *ContentFlowImpl) UploadContent(ctx context.Context, req *dto.UploadContentRequest, metadata *ClientMetadata) (*dto.UploadContentResponse, error) {
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
		if engagement.IsTerminal() {
			return ErrEngagementTerminal
		}
		if !engagement.CanUploadContent() {
			if engagement.ScriptState != models.ReviewStateApproved {
				return ErrScriptNotApproved
			}
			return ErrContentNotUploadable
		}

		rows, err := s.engagementRepo.UpdateContentIf(txCtx, engagement.ID, engagement.ContentState, map[string]any{
			"content_state":        models.ReviewStatePending,
			"content_uri":          req.ContentURI,
			"content_feedback":     nil,
			"content_submitted_at": utils.UTCNow(),
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrStaleState
		}
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Content upload failed: %s", err.Error())
		_ = recordAudit(ctx, s.auditRepo, models.AuditActorCreator, nil, &creator.ID, models.AuditActionContentUploaded, errMsg, false, &errMsg, metadata)
		return nil, wrapFlowError("CONTENT_UPLOAD_FAILED", "Content upload failed", err)
	}

	if engagement.Campaign != nil {
		s.snapshots.Invalidate(ctx, engagement.Campaign.UUID.String())
	}

	msg := fmt.Sprintf("Content uploaded on engagement %s", engagement.UUID.String())
	_ = recordAudit(ctx, s.auditRepo, models.AuditActorCreator, nil, &creator.ID, models.AuditActionContentUploaded, msg, true, nil, metadata)

	return &dto.UploadContentResponse{
		Message:      "Content submitted for review",
		ContentState: string(models.ReviewStatePending),
	}, nil
}

// ReviewContent handles the brand's verdict on pending content. Like script
// review, a verdict on an engagement with nothing pending is an idempotent
// no-op.
func (s *ContentFlowImpl) ReviewContent(ctx context.Context, req *dto.ReviewRequest, metadata *ClientMetadata) (*dto.ReviewResponse, error) {
	brand, err := getBrand(ctx, s.brandRepo, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("BRAND_LOOKUP_FAILED", KindNotFound, "Failed to lookup brand", err)
	}

	action := models.ReviewAction(req.Action)
	if err := validateReview(action, req.Feedback); err != nil {
		return nil, NewBusinessError("CONTENT_REVIEW_VALIDATION_FAILED", KindValidation, "Content review validation failed", err)
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

		rows, err := s.engagementRepo.UpdateContentIf(txCtx, engagement.ID, models.ReviewStatePending, map[string]any{
			"content_state":    action.State(),
			"content_feedback": req.Feedback,
		})
		if err != nil {
			return err
		}
		updated = rows > 0
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Content review failed: %s", err.Error())
		_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, models.AuditActionContentReviewed, errMsg, false, &errMsg, metadata)
		return nil, wrapFlowError("CONTENT_REVIEW_FAILED", "Content review failed", err)
	}

	if !updated {
		return &dto.ReviewResponse{
			Message: "No pending content to review",
			State:   string(engagement.ContentState),
			Updated: false,
		}, nil
	}

	msg := fmt.Sprintf("Content %s on engagement %s", req.Action, engagement.UUID.String())
	_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, models.AuditActionContentReviewed, msg, true, nil, metadata)

	s.notifyAsync(services.NotificationEvent{
		Kind:           services.NotifyContentReviewed,
		EngagementUUID: engagement.UUID.String(),
		CreatorID:      &engagement.CreatorID,
		Message:        fmt.Sprintf("Your content was reviewed: %s", req.Action),
	})

	return &dto.ReviewResponse{
		Message: "Content review recorded",
		State:   string(action.State()),
		Updated: true,
	}, nil
}

// BatchReviewContents applies per-creator content verdicts for one campaign
func (s *ContentFlowImpl) BatchReviewContents(ctx context.Context, req *dto.BatchReviewRequest, metadata *ClientMetadata) (*dto.BatchReviewResponse, error) {
	brand, err := getBrand(ctx, s.brandRepo, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("BRAND_LOOKUP_FAILED", KindNotFound, "Failed to lookup brand", err)
	}

	campaign, err := getOwnedCampaign(ctx, s.campaignRepo, req.UUID, brand.ID)
	if err != nil {
		return nil, wrapFlowError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if err := campaignWritable(campaign); err != nil {
		return nil, wrapFlowError("CONTENT_BATCH_REVIEW_FAILED", "Content batch review failed", err)
	}

	resp := &dto.BatchReviewResponse{Message: "Content batch review completed"}

	for _, entry := range req.Updates {
		action := models.ReviewAction(entry.Action)
		if err := validateReview(action, entry.Feedback); err != nil {
			return nil, NewBusinessError("CONTENT_REVIEW_VALIDATION_FAILED", KindValidation,
				fmt.Sprintf("Invalid review entry for creator %d", entry.CreatorID), err)
		}

		engagement, err := s.engagementRepo.ByCampaignAndCreator(ctx, campaign.ID, entry.CreatorID)
		if err != nil {
			return nil, wrapFlowError("CONTENT_BATCH_REVIEW_FAILED", "Content batch review failed", err)
		}
		if engagement == nil {
			resp.StaleCount++
			continue
		}

		rows, err := s.engagementRepo.UpdateContentIf(ctx, engagement.ID, models.ReviewStatePending, map[string]any{
			"content_state":    action.State(),
			"content_feedback": entry.Feedback,
		})
		if err != nil {
			return nil, wrapFlowError("CONTENT_BATCH_REVIEW_FAILED", "Content batch review failed", err)
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
			Kind:           services.NotifyContentReviewed,
			EngagementUUID: engagement.UUID.String(),
			CreatorID:      &engagement.CreatorID,
			Message:        fmt.Sprintf("Your content was reviewed: %s", entry.Action),
		})
	}

	msg := fmt.Sprintf("Batch content review on campaign %s: %d approved, %d rejected, %d revisions, %d stale",
		campaign.UUID.String(), resp.ApprovedCount, resp.RejectedCount, resp.RevisionRequestedCount, resp.StaleCount)
	_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, models.AuditActionContentReviewed, msg, true, nil, metadata)

	return resp, nil
}

// GoLive publishes approved content and moves the engagement into its final
// state. Only reachable from an approved content verdict.
func (s *ContentFlowImpl) GoLive(ctx context.Context, req *dto.GoLiveRequest, metadata *ClientMetadata) (*dto.GoLiveResponse, error) {
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
		if !engagement.CanGoLive() {
			if engagement.ContentState == models.ReviewStateLive {
				return ErrEngagementTerminal
			}
			return ErrContentNotApproved
		}

		rows, err := s.engagementRepo.UpdateContentIf(txCtx, engagement.ID, models.ReviewStateApproved, map[string]any{
			"content_state": models.ReviewStateLive,
			"live_uri":      req.LiveURI,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrStaleState
		}
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Go-live failed: %s", err.Error())
		_ = recordAudit(ctx, s.auditRepo, models.AuditActorCreator, nil, &creator.ID, models.AuditActionContentWentLive, errMsg, false, &errMsg, metadata)
		return nil, wrapFlowError("GO_LIVE_FAILED", "Go-live failed", err)
	}

	if engagement.Campaign != nil {
		s.snapshots.Invalidate(ctx, engagement.Campaign.UUID.String())
	}

	msg := fmt.Sprintf("Content went live on engagement %s", engagement.UUID.String())
	_ = recordAudit(ctx, s.auditRepo, models.AuditActorCreator, nil, &creator.ID, models.AuditActionContentWentLive, msg, true, nil, metadata)

	s.notifyAsync(services.NotificationEvent{
		Kind:           services.NotifyContentLive,
		EngagementUUID: engagement.UUID.String(),
		Message:        fmt.Sprintf("Content is live on engagement %s", engagement.UUID.String()),
	})

	return &dto.GoLiveResponse{
		Message:      "Content is live",
		ContentState: string(models.ReviewStateLive),
		LiveURI:      req.LiveURI,
	}, nil
}

func (s *ContentFlowImpl) notifyAsync(event services.NotificationEvent) {
	go func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.notifier.Notify(notifyCtx, event)
	}()
}
