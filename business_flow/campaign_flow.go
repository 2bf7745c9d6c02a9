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

// CampaignFlow handles the brand-facing campaign lifecycle
type CampaignFlow interface {
	CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CreateCampaignResponse, error)
	ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest, metadata *ClientMetadata) (*dto.ListCampaignsResponse, error)
	GetCampaign(ctx context.Context, uuid string, brandID uint, metadata *ClientMetadata) (*dto.GetCampaignResponse, error)
	ArchiveCampaign(ctx context.Context, req *dto.ArchiveCampaignRequest, metadata *ClientMetadata) (*dto.ArchiveCampaignResponse, error)
	RespondToCreators(ctx context.Context, req *dto.RespondCreatorsRequest, metadata *ClientMetadata) (*dto.RespondCreatorsResponse, error)
	FinalizeCreatorAmounts(ctx context.Context, req *dto.FinalizeAmountsRequest, metadata *ClientMetadata) (*dto.FinalizeAmountsResponse, error)
	SubmitCreatorSelection(ctx context.Context, req *dto.SubmitSelectionRequest, metadata *ClientMetadata) (*dto.SubmitSelectionResponse, error)
	PublishBrief(ctx context.Context, req *dto.PublishBriefRequest, metadata *ClientMetadata) (*dto.PublishBriefResponse, error)
	CompleteCampaign(ctx context.Context, req *dto.CompleteCampaignRequest, metadata *ClientMetadata) (*dto.CompleteCampaignResponse, error)
	ListCampaignEngagements(ctx context.Context, uuid string, brandID uint, page, pageSize int) (*dto.ListEngagementsResponse, error)
	ListCreatorEngagements(ctx context.Context, creatorID uint, page, pageSize int) (*dto.ListEngagementsResponse, error)
}

// CampaignFlowImpl implements the campaign business flow
type CampaignFlowImpl struct {
	campaignRepo   repository.CampaignRepository
	engagementRepo repository.EngagementRepository
	brandRepo      repository.BrandRepository
	creatorRepo    repository.CreatorRepository
	auditRepo      repository.AuditLogRepository
	notifier       services.NotificationService
	snapshots      *SnapshotCache
	db             *gorm.DB
}

// NewCampaignFlow creates a new campaign flow instance
func NewCampaignFlow(
	campaignRepo repository.CampaignRepository,
	engagementRepo repository.EngagementRepository,
	brandRepo repository.BrandRepository,
	creatorRepo repository.CreatorRepository,
	auditRepo repository.AuditLogRepository,
	notifier services.NotificationService,
	snapshots *SnapshotCache,
	db *gorm.DB,
) CampaignFlow {
	return &CampaignFlowImpl{
		campaignRepo:   campaignRepo,
		engagementRepo: engagementRepo,
		brandRepo:      brandRepo,
		creatorRepo:    creatorRepo,
		auditRepo:      auditRepo,
		notifier:       notifier,
		snapshots:      snapshots,
		db:             db,
	}
}

// CreateCampaign creates a new campaign in the sourcing phase
func (s *CampaignFlowImpl) CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, metadata *ClientMetadata) (*dto.CreateCampaignResponse, error) {
	brand, err := getBrand(ctx, s.brandRepo, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("BRAND_LOOKUP_FAILED", KindNotFound, "Failed to lookup brand", err)
	}

	campaign := &models.Campaign{
		BrandID:     brand.ID,
		Phase:       models.CampaignPhaseSourcing,
		Title:       req.Title,
		Budget:      req.Budget,
		CostPerView: req.CostPerView,
	}
	if req.Targeting != nil {
		campaign.Targeting = models.CampaignTargeting{
			Categories:   req.Targeting.Categories,
			MinFollowers: req.Targeting.MinFollowers,
			MaxFollowers: req.Targeting.MaxFollowers,
		}
	}

	if err := s.campaignRepo.Save(ctx, campaign); err != nil {
		errMsg := fmt.Sprintf("Campaign creation failed: %s", err.Error())
		_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, models.AuditActionCampaignCreated, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("CAMPAIGN_CREATION_FAILED", KindInternal, "Campaign creation failed", err)
	}

	msg := fmt.Sprintf("Campaign %s created", campaign.UUID.String())
	_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, models.AuditActionCampaignCreated, msg, true, nil, metadata)

	return &dto.CreateCampaignResponse{
		Message:   "Campaign created successfully",
		ID:        campaign.ID,
		UUID:      campaign.UUID.String(),
		Phase:     string(campaign.Phase),
		CreatedAt: campaign.CreatedAt.Format(time.RFC3339),
	}, nil
}

// ListCampaigns returns a page of the brand's campaigns. The derived
// awaiting_brief phase is filtered in memory since it is never stored.
func (s *CampaignFlowImpl) ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest, metadata *ClientMetadata) (*dto.ListCampaignsResponse, error) {
	brand, err := getBrand(ctx, s.brandRepo, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("BRAND_LOOKUP_FAILED", KindNotFound, "Failed to lookup brand", err)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := models.CampaignFilter{BrandID: &brand.ID}
	if req.Title != nil {
		filter.Title = req.Title
	}
	if req.Archived != nil {
		filter.Archived = req.Archived
	}

	awaitingBriefOnly := false
	if req.Phase != nil {
		phase := models.CampaignPhase(*req.Phase)
		if phase == models.CampaignPhaseAwaitingBrief {
			awaitingBriefOnly = true
			stored := models.CampaignPhaseCreatorsAreFinal
			filter.Phase = &stored
		} else {
			filter.Phase = &phase
		}
	}

	campaigns, err := s.campaignRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", KindInternal, "Failed to list campaigns", err)
	}

	total, err := s.campaignRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", KindInternal, "Failed to count campaigns", err)
	}

	items := make([]dto.CampaignItem, 0, len(campaigns))
	for _, c := range campaigns {
		if awaitingBriefOnly && !c.AwaitingBrief() {
			total--
			continue
		}
		items = append(items, toCampaignItem(c, true))
	}

	return &dto.ListCampaignsResponse{
		Message: "Campaigns retrieved successfully",
		Items:   items,
		Total:   total,
	}, nil
}

// GetCampaign returns the full aggregate snapshot for the owning brand,
// served from the snapshot cache when fresh
func (s *CampaignFlowImpl) GetCampaign(ctx context.Context, uuid string, brandID uint, metadata *ClientMetadata) (*dto.GetCampaignResponse, error) {
	brand, err := getBrand(ctx, s.brandRepo, brandID)
	if err != nil {
		return nil, NewBusinessError("BRAND_LOOKUP_FAILED", KindNotFound, "Failed to lookup brand", err)
	}

	campaign, err := getOwnedCampaign(ctx, s.campaignRepo, uuid, brand.ID)
	if err != nil {
		return nil, wrapFlowError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	// Ownership is checked against the database even on a cache hit; the
	// cached entry only short-circuits the aggregate counting.
	if cached := s.snapshots.Get(ctx, uuid); cached != nil {
		return cached, nil
	}

	counts, err := s.engagementRepo.StateCounts(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_SNAPSHOT_FAILED", KindInternal, "Failed to aggregate engagement states", err)
	}

	resp := &dto.GetCampaignResponse{
		Message:  "Campaign retrieved successfully",
		Campaign: toCampaignItem(campaign, true),
		Counts: dto.EngagementCountsDTO{
			Total:              counts.Total,
			ShortlistPending:   counts.ShortlistPending,
			ShortlistAccepted:  counts.ShortlistAccepted,
			ShortlistRejected:  counts.ShortlistRejected,
			AmountsFinalized:   counts.AmountsFinalized,
			ScriptsPending:     counts.ScriptsPending,
			ScriptsApproved:    counts.ScriptsApproved,
			ContentPending:     counts.ContentPending,
			ContentApproved:    counts.ContentApproved,
			ContentLive:        counts.ContentLive,
			OutstandingContent: counts.OutstandingContent,
		},
	}

	s.snapshots.Set(ctx, uuid, resp)
	return resp, nil
}

// ArchiveCampaign soft-archives a campaign. Archived campaigns stay readable
// but reject all further writes.
func (s *CampaignFlowImpl) ArchiveCampaign(ctx context.Context, req *dto.ArchiveCampaignRequest, metadata *ClientMetadata) (*dto.ArchiveCampaignResponse, error) {
	brand, err := getBrand(ctx, s.brandRepo, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("BRAND_LOOKUP_FAILED", KindNotFound, "Failed to lookup brand", err)
	}

	campaign, err := getOwnedCampaign(ctx, s.campaignRepo, req.UUID, brand.ID)
	if err != nil {
		return nil, wrapFlowError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign.IsArchived() {
		return nil, wrapFlowError("CAMPAIGN_ARCHIVE_FAILED", "Campaign archive failed", ErrCampaignArchived)
	}

	archivedAt := utils.UTCNow()
	if err := s.campaignRepo.UpdateFields(ctx, campaign.ID, map[string]any{"archived_at": archivedAt}); err != nil {
		errMsg := fmt.Sprintf("Campaign archive failed: %s", err.Error())
		_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, models.AuditActionCampaignArchived, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("CAMPAIGN_ARCHIVE_FAILED", KindInternal, "Campaign archive failed", err)
	}

	s.snapshots.Invalidate(ctx, req.UUID)

	msg := fmt.Sprintf("Campaign %s archived", campaign.UUID.String())
	_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, models.AuditActionCampaignArchived, msg, true, nil, metadata)

	return &dto.ArchiveCampaignResponse{
		Message:    "Campaign archived",
		ArchivedAt: archivedAt.Format(time.RFC3339),
	}, nil
}

// RespondToCreators applies the brand's accept/reject verdicts on shortlisted
// creators. Verdicts on creators whose shortlist entry is no longer pending
// count as stale and never abort the batch.
func (s *CampaignFlowImpl) RespondToCreators(ctx context.Context, req *dto.RespondCreatorsRequest, metadata *ClientMetadata) (*dto.RespondCreatorsResponse, error) {
	brand, err := getBrand(ctx, s.brandRepo, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("BRAND_LOOKUP_FAILED", KindNotFound, "Failed to lookup brand", err)
	}

	campaign, err := getOwnedCampaign(ctx, s.campaignRepo, req.UUID, brand.ID)
	if err != nil {
		return nil, wrapFlowError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if err := campaignWritable(campaign); err != nil {
		return nil, wrapFlowError("CREATOR_RESPONSE_FAILED", "Creator response failed", err)
	}
	if campaign.Phase.SelectionCommitted() {
		return nil, wrapFlowError("CREATOR_RESPONSE_FAILED", "Creator response failed", ErrShortlistClosed)
	}

	resp := &dto.RespondCreatorsResponse{Message: "Creator responses recorded"}

	for _, verdict := range req.Responses {
		engagement, err := s.engagementRepo.ByCampaignAndCreator(ctx, campaign.ID, verdict.CreatorID)
		if err != nil {
			return nil, NewBusinessError("CREATOR_RESPONSE_FAILED", KindInternal, "Creator response failed", err)
		}
		if engagement == nil {
			resp.StaleCount++
			continue
		}

		next := models.ShortlistStatusAccepted
		if verdict.Action == "reject" {
			next = models.ShortlistStatusRejected
		}

		rows, err := s.engagementRepo.UpdateShortlistIf(ctx, engagement.ID, models.ShortlistStatusPending, map[string]any{
			"shortlist_status": next,
		})
		if err != nil {
			return nil, NewBusinessError("CREATOR_RESPONSE_FAILED", KindInternal, "Creator response failed", err)
		}
		if rows == 0 {
			resp.StaleCount++
			continue
		}

		if next == models.ShortlistStatusAccepted {
			resp.AcceptedCount++
			s.notifyAsync(services.NotificationEvent{
				Kind:         services.NotifyCreatorAccepted,
				CampaignUUID: campaign.UUID.String(),
				CreatorID:    &verdict.CreatorID,
				Message:      fmt.Sprintf("You were accepted on campaign %q", campaign.Title),
			})
		} else {
			resp.RejectedCount++
		}
	}

	s.snapshots.Invalidate(ctx, req.UUID)

	msg := fmt.Sprintf("Creator responses on campaign %s: %d accepted, %d rejected, %d stale",
		campaign.UUID.String(), resp.AcceptedCount, resp.RejectedCount, resp.StaleCount)
	_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, models.AuditActionCreatorsResponded, msg, true, nil, metadata)

	return resp, nil
}

// FinalizeCreatorAmounts marks the negotiation round done for the whole
// campaign, locking in whatever final amounts exist at that moment.
// Engagements still negotiating are left untouched.
// Idempotent: a second call reports AlreadyFinalized.
func (s *CampaignFlowImpl) FinalizeCreatorAmounts(ctx context.Context, req *dto.FinalizeAmountsRequest, metadata *ClientMetadata) (*dto.FinalizeAmountsResponse, error) {
	brand, err := getBrand(ctx, s.brandRepo, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("BRAND_LOOKUP_FAILED", KindNotFound, "Failed to lookup brand", err)
	}

	var finalizedAt time.Time
	var already bool

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		campaign, err := getOwnedCampaign(txCtx, s.campaignRepo, req.UUID, brand.ID)
		if err != nil {
			return err
		}
		if err := campaignWritable(campaign); err != nil {
			return err
		}
		if campaign.AmountsFinalizedAt != nil {
			finalizedAt = *campaign.AmountsFinalizedAt
			already = true
			return nil
		}

		finalizedAt = utils.UTCNow()
		return s.campaignRepo.UpdateFields(txCtx, campaign.ID, map[string]any{"amounts_finalized_at": finalizedAt})
	})

	if err != nil {
		errMsg := fmt.Sprintf("Amount finalization failed: %s", err.Error())
		_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, models.AuditActionAmountsFinalized, errMsg, false, &errMsg, metadata)
		return nil, wrapFlowError("AMOUNT_FINALIZATION_FAILED", "Amount finalization failed", err)
	}

	if !already {
		s.snapshots.Invalidate(ctx, req.UUID)
		msg := fmt.Sprintf("Creator amounts finalized on campaign %s", req.UUID)
		_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, models.AuditActionAmountsFinalized, msg, true, nil, metadata)
	}

	return &dto.FinalizeAmountsResponse{
		Message:            "Creator amounts finalized",
		AmountsFinalizedAt: finalizedAt.Format(time.RFC3339),
		AlreadyFinalized:   already,
	}, nil
}

// SubmitCreatorSelection commits the creator selection, closing the shortlist
// for good. Requires finalized amounts. Idempotent past the transition.
func (s *CampaignFlowImpl) SubmitCreatorSelection(ctx context.Context, req *dto.SubmitSelectionRequest, metadata *ClientMetadata) (*dto.SubmitSelectionResponse, error) {
	brand, err := getBrand(ctx, s.brandRepo, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("BRAND_LOOKUP_FAILED", KindNotFound, "Failed to lookup brand", err)
	}

	var phase models.CampaignPhase
	var already bool

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		campaign, err := getOwnedCampaign(txCtx, s.campaignRepo, req.UUID, brand.ID)
		if err != nil {
			return err
		}
		if err := campaignWritable(campaign); err != nil {
			return err
		}
		if campaign.Phase.SelectionCommitted() {
			phase = campaign.Phase
			already = true
			return nil
		}
		if campaign.AmountsFinalizedAt == nil {
			return ErrAmountsNotFinalized
		}
		if campaign.Phase == models.CampaignPhaseSourcing {
			return ErrCreatorsNotShortlisted
		}

		rows, err := s.campaignRepo.UpdatePhaseIf(txCtx, campaign.ID, models.CampaignPhaseCreatorsShortlisted, map[string]any{
			"phase": models.CampaignPhaseCreatorsAreFinal,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			// Lost the race; the winner committed the selection already
			current, err := s.campaignRepo.ByID(txCtx, campaign.ID)
			if err != nil {
				return err
			}
			if current != nil && current.Phase.SelectionCommitted() {
				phase = current.Phase
				already = true
				return nil
			}
			return ErrStaleState
		}

		phase = models.CampaignPhaseCreatorsAreFinal
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Selection commit failed: %s", err.Error())
		_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, models.AuditActionSelectionSubmitted, errMsg, false, &errMsg, metadata)
		return nil, wrapFlowError("SELECTION_COMMIT_FAILED", "Selection commit failed", err)
	}

	if !already {
		s.snapshots.Invalidate(ctx, req.UUID)
		msg := fmt.Sprintf("Creator selection committed on campaign %s", req.UUID)
		_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, models.AuditActionSelectionSubmitted, msg, true, nil, metadata)
	}

	return &dto.SubmitSelectionResponse{
		Message:          "Creator selection committed",
		Phase:            string(phase),
		AlreadyCommitted: already,
	}, nil
}

// PublishBrief publishes the creative brief to accepted creators. The first
// publication moves the campaign into brief_published; later calls overwrite
// the brief in place.
func (s *CampaignFlowImpl) PublishBrief(ctx context.Context, req *dto.PublishBriefRequest, metadata *ClientMetadata) (*dto.PublishBriefResponse, error) {
	brand, err := getBrand(ctx, s.brandRepo, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("BRAND_LOOKUP_FAILED", KindNotFound, "Failed to lookup brand", err)
	}

	brief := models.CampaignBrief{
		Title:          req.Brief.Title,
		Focus:          req.Brief.Focus,
		Dos:            req.Brief.Dos,
		Donts:          req.Brief.Donts,
		CallToAction:   req.Brief.CallToAction,
		SampleAssetURI: req.Brief.SampleAssetURI,
		ScriptTemplate: req.Brief.ScriptTemplate,
	}
	if brief.IsEmpty() {
		return nil, NewBusinessError("BRIEF_PUBLICATION_FAILED", KindValidation, "Brief publication failed", ErrBriefEmpty)
	}

	var phase models.CampaignPhase
	var publishedAt time.Time
	var firstPublication bool

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		campaign, err := getOwnedCampaign(txCtx, s.campaignRepo, req.UUID, brand.ID)
		if err != nil {
			return err
		}
		if err := campaignWritable(campaign); err != nil {
			return err
		}
		if !campaign.Phase.SelectionCommitted() {
			return ErrSelectionNotFinal
		}

		updates := map[string]any{"brief": brief}
		phase = campaign.Phase

		if campaign.BriefPublishedAt == nil {
			firstPublication = true
			publishedAt = utils.UTCNow()
			updates["brief_published_at"] = publishedAt
			if err := s.campaignRepo.UpdateFields(txCtx, campaign.ID, updates); err != nil {
				return err
			}
			// Phase moves only on the first publication; zero rows means a
			// concurrent publish won the transition.
			rows, err := s.campaignRepo.UpdatePhaseIf(txCtx, campaign.ID, models.CampaignPhaseCreatorsAreFinal, map[string]any{
				"phase": models.CampaignPhaseBriefPublished,
			})
			if err != nil {
				return err
			}
			if rows > 0 {
				phase = models.CampaignPhaseBriefPublished
			}
			return nil
		}

		publishedAt = *campaign.BriefPublishedAt
		return s.campaignRepo.UpdateFields(txCtx, campaign.ID, updates)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Brief publication failed: %s", err.Error())
		_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, models.AuditActionBriefPublished, errMsg, false, &errMsg, metadata)
		return nil, wrapFlowError("BRIEF_PUBLICATION_FAILED", "Brief publication failed", err)
	}

	s.snapshots.Invalidate(ctx, req.UUID)

	msg := fmt.Sprintf("Brief published on campaign %s", req.UUID)
	_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, models.AuditActionBriefPublished, msg, true, nil, metadata)

	if firstPublication {
		s.notifyAsync(services.NotificationEvent{
			Kind:         services.NotifyBriefPublished,
			CampaignUUID: req.UUID,
			BrandID:      &brand.ID,
			Message:      "The campaign brief is now available",
		})
	}

	return &dto.PublishBriefResponse{
		Message:          "Brief published",
		Phase:            string(phase),
		BriefPublishedAt: publishedAt.Format(time.RFC3339),
	}, nil
}

// CompleteCampaign closes out a campaign. Blocked while any accepted creator
// with a live negotiation has not yet gone live.
func (s *CampaignFlowImpl) CompleteCampaign(ctx context.Context, req *dto.CompleteCampaignRequest, metadata *ClientMetadata) (*dto.CompleteCampaignResponse, error) {
	brand, err := getBrand(ctx, s.brandRepo, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("BRAND_LOOKUP_FAILED", KindNotFound, "Failed to lookup brand", err)
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		campaign, err := getOwnedCampaign(txCtx, s.campaignRepo, req.UUID, brand.ID)
		if err != nil {
			return err
		}
		if err := campaignWritable(campaign); err != nil {
			return err
		}
		if campaign.Phase != models.CampaignPhaseBriefPublished && campaign.Phase != models.CampaignPhaseInProduction {
			return ErrBriefNotPublished
		}

		counts, err := s.engagementRepo.StateCounts(txCtx, campaign.ID)
		if err != nil {
			return err
		}
		if counts.OutstandingContent > 0 {
			return ErrEngagementsOutstanding
		}

		rows, err := s.campaignRepo.UpdatePhaseIf(txCtx, campaign.ID, campaign.Phase, map[string]any{
			"phase": models.CampaignPhaseCompleted,
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
		errMsg := fmt.Sprintf("Campaign completion failed: %s", err.Error())
		_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, models.AuditActionCampaignCompleted, errMsg, false, &errMsg, metadata)
		return nil, wrapFlowError("CAMPAIGN_COMPLETION_FAILED", "Campaign completion failed", err)
	}

	s.snapshots.Invalidate(ctx, req.UUID)

	msg := fmt.Sprintf("Campaign %s completed", req.UUID)
	_ = recordAudit(ctx, s.auditRepo, models.AuditActorBrand, &brand.ID, nil, models.AuditActionCampaignCompleted, msg, true, nil, metadata)

	return &dto.CompleteCampaignResponse{
		Message: "Campaign completed",
		Phase:   string(models.CampaignPhaseCompleted),
	}, nil
}

// ListCampaignEngagements returns a page of one campaign's engagements for
// the owning brand
func (s *CampaignFlowImpl) ListCampaignEngagements(ctx context.Context, uuid string, brandID uint, page, pageSize int) (*dto.ListEngagementsResponse, error) {
	brand, err := getBrand(ctx, s.brandRepo, brandID)
	if err != nil {
		return nil, NewBusinessError("BRAND_LOOKUP_FAILED", KindNotFound, "Failed to lookup brand", err)
	}

	campaign, err := getOwnedCampaign(ctx, s.campaignRepo, uuid, brand.ID)
	if err != nil {
		return nil, wrapFlowError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	engagements, err := s.engagementRepo.ListByCampaign(ctx, campaign.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("ENGAGEMENT_LIST_FAILED", KindInternal, "Failed to list engagements", err)
	}

	total, err := s.engagementRepo.Count(ctx, models.EngagementFilter{CampaignID: &campaign.ID})
	if err != nil {
		return nil, NewBusinessError("ENGAGEMENT_LIST_FAILED", KindInternal, "Failed to count engagements", err)
	}

	items := make([]dto.EngagementItem, 0, len(engagements))
	for _, e := range engagements {
		items = append(items, toEngagementItem(e))
	}

	return &dto.ListEngagementsResponse{
		Message: "Engagements retrieved successfully",
		Items:   items,
		Total:   total,
	}, nil
}

// ListCreatorEngagements returns a page of the creator's own engagements
// across campaigns
func (s *CampaignFlowImpl) ListCreatorEngagements(ctx context.Context, creatorID uint, page, pageSize int) (*dto.ListEngagementsResponse, error) {
	creator, err := getCreator(ctx, s.creatorRepo, creatorID)
	if err != nil {
		return nil, NewBusinessError("CREATOR_LOOKUP_FAILED", KindNotFound, "Failed to lookup creator", err)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	engagements, err := s.engagementRepo.ListByCreator(ctx, creator.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("ENGAGEMENT_LIST_FAILED", KindInternal, "Failed to list engagements", err)
	}

	total, err := s.engagementRepo.Count(ctx, models.EngagementFilter{CreatorID: &creator.ID})
	if err != nil {
		return nil, NewBusinessError("ENGAGEMENT_LIST_FAILED", KindInternal, "Failed to count engagements", err)
	}

	items := make([]dto.EngagementItem, 0, len(engagements))
	for _, e := range engagements {
		items = append(items, toEngagementItem(e))
	}

	return &dto.ListEngagementsResponse{
		Message: "Engagements retrieved successfully",
		Items:   items,
		Total:   total,
	}, nil
}

func (s *CampaignFlowImpl) notifyAsync(event services.NotificationEvent) {
	go func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.notifier.Notify(notifyCtx, event)
	}()
}
