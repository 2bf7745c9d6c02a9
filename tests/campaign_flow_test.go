package tests

import (
	"context"
	"testing"

	"github.com/sidverse/gandaberunda/app/dto"
	"github.com/sidverse/gandaberunda/app/services"
	businessflow "github.com/sidverse/gandaberunda/business_flow"
	"github.com/sidverse/gandaberunda/config"
	"github.com/sidverse/gandaberunda/models"
	"github.com/sidverse/gandaberunda/repository"
	testingutil "github.com/sidverse/gandaberunda/testing"
	"github.com/sidverse/gandaberunda/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCampaignFlow(testDB *testingutil.TestDB) businessflow.CampaignFlow {
	return businessflow.NewCampaignFlow(
		repository.NewCampaignRepository(testDB.DB),
		repository.NewEngagementRepository(testDB.DB),
		repository.NewBrandRepository(testDB.DB),
		repository.NewCreatorRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		services.NewMockNotificationService(),
		businessflow.NewSnapshotCache(nil, &config.CacheConfig{}),
		testDB.DB,
	)
}

func TestCampaignFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newCampaignFlow(testDB)
		ctx := context.Background()

		brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)

		t.Run("CreateStartsInSourcing", func(t *testing.T) {
			resp, err := flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{
				BrandID: brand.ID,
				Title:   "Monsoon Launch",
				Budget:  750000,
				Targeting: &dto.TargetingDTO{
					Categories:   []string{"fitness"},
					MinFollowers: utils.ToPtr(uint64(25000)),
				},
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, string(models.CampaignPhaseSourcing), resp.Phase)
			assert.NotEmpty(t, resp.UUID)
		})

		t.Run("SnapshotCountsEngagements", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseInProduction)
			require.NoError(t, err)

			live, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			_, err = fixtures.CreateTestEngagement(campaign.ID, live.ID, testingutil.ContentLiveEngagement(4000))
			require.NoError(t, err)

			outstanding, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			_, err = fixtures.CreateTestEngagement(campaign.ID, outstanding.ID, testingutil.ScriptApprovedEngagement(5000))
			require.NoError(t, err)

			rejected, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			_, err = fixtures.CreateTestEngagement(campaign.ID, rejected.ID, func(e *models.Engagement) {
				e.ShortlistStatus = models.ShortlistStatusRejected
			})
			require.NoError(t, err)

			resp, err := flow.GetCampaign(ctx, campaign.UUID.String(), brand.ID, testMetadata())
			require.NoError(t, err)
			assert.False(t, resp.FromCache)
			assert.Equal(t, int64(3), resp.Counts.Total)
			assert.Equal(t, int64(2), resp.Counts.ShortlistAccepted)
			assert.Equal(t, int64(1), resp.Counts.ShortlistRejected)
			assert.Equal(t, int64(2), resp.Counts.AmountsFinalized)
			assert.Equal(t, int64(1), resp.Counts.ContentLive)
			assert.Equal(t, int64(1), resp.Counts.OutstandingContent)
		})

		t.Run("ForeignBrandDenied", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseSourcing)
			require.NoError(t, err)
			other, err := fixtures.CreateTestBrand()
			require.NoError(t, err)

			_, err = flow.GetCampaign(ctx, campaign.UUID.String(), other.ID, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.KindForbidden, businessflow.KindOf(err))
		})

		t.Run("ListFiltersAwaitingBrief", func(t *testing.T) {
			listBrand, err := fixtures.CreateTestBrand()
			require.NoError(t, err)

			// Selection committed but no brief yet: shows up as awaiting_brief
			waiting, err := fixtures.CreateTestCampaign(listBrand.ID, models.CampaignPhaseCreatorsAreFinal)
			require.NoError(t, err)
			_, err = fixtures.CreateTestCampaign(listBrand.ID, models.CampaignPhaseSourcing)
			require.NoError(t, err)
			_, err = fixtures.CreateTestCampaign(listBrand.ID, models.CampaignPhaseBriefPublished)
			require.NoError(t, err)

			resp, err := flow.ListCampaigns(ctx, &dto.ListCampaignsRequest{
				BrandID: listBrand.ID,
				Phase:   utils.ToPtr("awaiting_brief"),
			}, testMetadata())
			require.NoError(t, err)
			require.Len(t, resp.Items, 1)
			assert.Equal(t, waiting.UUID.String(), resp.Items[0].UUID)
			assert.Equal(t, string(models.CampaignPhaseAwaitingBrief), resp.Items[0].EffectivePhase)

			all, err := flow.ListCampaigns(ctx, &dto.ListCampaignsRequest{BrandID: listBrand.ID}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, int64(3), all.Total)
		})

		t.Run("ArchiveStopsWrites", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseCreatorsShortlisted)
			require.NoError(t, err)

			resp, err := flow.ArchiveCampaign(ctx, &dto.ArchiveCampaignRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
			}, testMetadata())
			require.NoError(t, err)
			assert.NotEmpty(t, resp.ArchivedAt)

			// Second archive fails, as does any workflow write
			_, err = flow.ArchiveCampaign(ctx, &dto.ArchiveCampaignRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignArchived(err))

			_, err = flow.FinalizeCreatorAmounts(ctx, &dto.FinalizeAmountsRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignArchived(err))
		})

		t.Run("RespondToCreators", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseCreatorsShortlisted)
			require.NoError(t, err)

			first, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			_, err = fixtures.CreateTestEngagement(campaign.ID, first.ID)
			require.NoError(t, err)
			second, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			_, err = fixtures.CreateTestEngagement(campaign.ID, second.ID)
			require.NoError(t, err)
			alreadyAccepted, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			_, err = fixtures.CreateTestEngagement(campaign.ID, alreadyAccepted.ID, testingutil.AcceptedEngagement)
			require.NoError(t, err)

			resp, err := flow.RespondToCreators(ctx, &dto.RespondCreatorsRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
				Responses: []dto.CreatorResponseVerdict{
					{CreatorID: first.ID, Action: "accept"},
					{CreatorID: second.ID, Action: "reject"},
					{CreatorID: alreadyAccepted.ID, Action: "reject"},
				},
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 1, resp.AcceptedCount)
			assert.Equal(t, 1, resp.RejectedCount)
			assert.Equal(t, 1, resp.StaleCount)
		})

		t.Run("ShortlistClosedAfterSelection", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseCreatorsAreFinal)
			require.NoError(t, err)
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			_, err = fixtures.CreateTestEngagement(campaign.ID, creator.ID)
			require.NoError(t, err)

			_, err = flow.RespondToCreators(ctx, &dto.RespondCreatorsRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
				Responses: []dto.CreatorResponseVerdict{
					{CreatorID: creator.ID, Action: "accept"},
				},
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsShortlistClosed(err))
		})

		t.Run("FinalizeAmountsLeavesOpenNegotiationsAlone", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseCreatorsShortlisted)
			require.NoError(t, err)
			settled, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			_, err = fixtures.CreateTestEngagement(campaign.ID, settled.ID, testingutil.FinalizedEngagement(4500))
			require.NoError(t, err)
			open, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			negotiating, err := fixtures.CreateTestEngagement(campaign.ID, open.ID, func(e *models.Engagement) {
				e.ShortlistStatus = models.ShortlistStatusAccepted
				e.NegotiationState = models.NegotiationStateBidPending
				e.CreatorBidAmount = utils.ToPtr(uint64(5000))
			})
			require.NoError(t, err)

			// Finalization locks in whatever amounts exist and succeeds even
			// while some negotiations are still open
			resp, err := flow.FinalizeCreatorAmounts(ctx, &dto.FinalizeAmountsRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
			}, testMetadata())
			require.NoError(t, err)
			assert.False(t, resp.AlreadyFinalized)
			assert.NotEmpty(t, resp.AmountsFinalizedAt)

			engagementRepo := repository.NewEngagementRepository(testDB.DB)
			stored, err := engagementRepo.ByUUID(ctx, negotiating.UUID.String())
			require.NoError(t, err)
			assert.Equal(t, models.NegotiationStateBidPending, stored.NegotiationState)
			assert.Nil(t, stored.FinalAmount)
			require.NotNil(t, stored.CreatorBidAmount)
			assert.Equal(t, uint64(5000), *stored.CreatorBidAmount)
		})

		t.Run("FinalizeAmountsIsIdempotent", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseCreatorsShortlisted)
			require.NoError(t, err)
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			_, err = fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.FinalizedEngagement(4500))
			require.NoError(t, err)

			first, err := flow.FinalizeCreatorAmounts(ctx, &dto.FinalizeAmountsRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
			}, testMetadata())
			require.NoError(t, err)
			assert.False(t, first.AlreadyFinalized)

			second, err := flow.FinalizeCreatorAmounts(ctx, &dto.FinalizeAmountsRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
			}, testMetadata())
			require.NoError(t, err)
			assert.True(t, second.AlreadyFinalized)
			assert.Equal(t, first.AmountsFinalizedAt, second.AmountsFinalizedAt)
		})

		t.Run("SelectionRequiresFinalizedAmounts", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseCreatorsShortlisted)
			require.NoError(t, err)

			_, err = flow.SubmitCreatorSelection(ctx, &dto.SubmitSelectionRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsAmountsNotFinalized(err))
		})

		t.Run("SelectionRequiresShortlistedCampaign", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseSourcing)
			require.NoError(t, err)

			_, err = flow.FinalizeCreatorAmounts(ctx, &dto.FinalizeAmountsRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
			}, testMetadata())
			require.NoError(t, err)

			// No shortlist was ever uploaded, so the commit is a failed
			// precondition rather than a lost race
			_, err = flow.SubmitCreatorSelection(ctx, &dto.SubmitSelectionRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsCreatorsNotShortlisted(err))
			assert.Equal(t, businessflow.KindPreconditionFailed, businessflow.KindOf(err))
		})

		t.Run("SelectionCommitIsIdempotent", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseCreatorsShortlisted)
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(campaign).Update("amounts_finalized_at", utils.UTCNow()).Error)

			first, err := flow.SubmitCreatorSelection(ctx, &dto.SubmitSelectionRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
			}, testMetadata())
			require.NoError(t, err)
			assert.False(t, first.AlreadyCommitted)
			assert.Equal(t, string(models.CampaignPhaseCreatorsAreFinal), first.Phase)

			second, err := flow.SubmitCreatorSelection(ctx, &dto.SubmitSelectionRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
			}, testMetadata())
			require.NoError(t, err)
			assert.True(t, second.AlreadyCommitted)
		})

		t.Run("PublishBrief", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseCreatorsAreFinal)
			require.NoError(t, err)

			_, err = flow.PublishBrief(ctx, &dto.PublishBriefRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
				Brief:   dto.BriefDTO{},
			}, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.KindValidation, businessflow.KindOf(err))

			first, err := flow.PublishBrief(ctx, &dto.PublishBriefRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
				Brief: dto.BriefDTO{
					Title: utils.ToPtr("Festive launch"),
					Focus: utils.ToPtr("Unboxing and first impressions"),
					Dos:   []string{"show the logo"},
				},
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, string(models.CampaignPhaseBriefPublished), first.Phase)

			// Re-publishing overwrites the brief but keeps the original timestamp
			second, err := flow.PublishBrief(ctx, &dto.PublishBriefRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
				Brief: dto.BriefDTO{
					Title: utils.ToPtr("Festive launch v2"),
				},
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, first.BriefPublishedAt, second.BriefPublishedAt)
		})

		t.Run("PublishBriefRequiresCommittedSelection", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseCreatorsShortlisted)
			require.NoError(t, err)

			_, err = flow.PublishBrief(ctx, &dto.PublishBriefRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
				Brief:   dto.BriefDTO{Title: utils.ToPtr("Too early")},
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsSelectionNotFinal(err))
		})

		t.Run("CompleteCampaign", func(t *testing.T) {
			early, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseCreatorsAreFinal)
			require.NoError(t, err)
			_, err = flow.CompleteCampaign(ctx, &dto.CompleteCampaignRequest{
				BrandID: brand.ID,
				UUID:    early.UUID.String(),
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsBriefNotPublished(err))

			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseInProduction)
			require.NoError(t, err)
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.ScriptApprovedEngagement(4000))
			require.NoError(t, err)

			_, err = flow.CompleteCampaign(ctx, &dto.CompleteCampaignRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsEngagementsOutstanding(err))

			require.NoError(t, testDB.DB.Model(engagement).Update("content_state", models.ReviewStateLive).Error)

			resp, err := flow.CompleteCampaign(ctx, &dto.CompleteCampaignRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, string(models.CampaignPhaseCompleted), resp.Phase)

			// Completed campaigns reject further writes
			_, err = flow.CompleteCampaign(ctx, &dto.CompleteCampaignRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
			}, testMetadata())
			require.Error(t, err)
		})

		t.Run("EngagementListings", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseCreatorsShortlisted)
			require.NoError(t, err)

			creators := make([]*models.Creator, 0, 3)
			for i := 0; i < 3; i++ {
				creator, err := fixtures.CreateTestCreator()
				require.NoError(t, err)
				creators = append(creators, creator)
				_, err = fixtures.CreateTestEngagement(campaign.ID, creator.ID)
				require.NoError(t, err)
			}

			page, err := flow.ListCampaignEngagements(ctx, campaign.UUID.String(), brand.ID, 1, 2)
			require.NoError(t, err)
			assert.Equal(t, int64(3), page.Total)
			assert.Len(t, page.Items, 2)

			rest, err := flow.ListCampaignEngagements(ctx, campaign.UUID.String(), brand.ID, 2, 2)
			require.NoError(t, err)
			assert.Len(t, rest.Items, 1)

			mine, err := flow.ListCreatorEngagements(ctx, creators[0].ID, 1, 20)
			require.NoError(t, err)
			assert.Equal(t, int64(1), mine.Total)
			require.Len(t, mine.Items, 1)
			assert.Equal(t, campaign.UUID.String(), mine.Items[0].CampaignUUID)
		})

		return nil
	})
	require.NoError(t, err)
}
