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

func newScriptFlow(testDB *testingutil.TestDB) businessflow.ScriptFlow {
	return businessflow.NewScriptFlow(
		repository.NewEngagementRepository(testDB.DB),
		repository.NewCampaignRepository(testDB.DB),
		repository.NewCreatorRepository(testDB.DB),
		repository.NewBrandRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		services.NewMockNotificationService(),
		businessflow.NewSnapshotCache(nil, &config.CacheConfig{}),
		testDB.DB,
	)
}

func TestScriptFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newScriptFlow(testDB)
		engagementRepo := repository.NewEngagementRepository(testDB.DB)
		campaignRepo := repository.NewCampaignRepository(testDB.DB)
		ctx := context.Background()

		brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)

		t.Run("SubmitMovesCampaignIntoProduction", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseBriefPublished)
			require.NoError(t, err)
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.FinalizedEngagement(4000))
			require.NoError(t, err)

			resp, err := flow.SubmitScript(ctx, &dto.SubmitScriptRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
				Content:   "Opening hook, product demo, call to action.",
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, string(models.ReviewStatePending), resp.ScriptState)
			assert.Equal(t, string(models.CampaignPhaseInProduction), resp.CampaignPhase)

			stored, err := campaignRepo.ByID(ctx, campaign.ID)
			require.NoError(t, err)
			assert.Equal(t, models.CampaignPhaseInProduction, stored.Phase)
		})

		t.Run("RevisionLoop", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseInProduction)
			require.NoError(t, err)
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.FinalizedEngagement(4000))
			require.NoError(t, err)

			_, err = flow.SubmitScript(ctx, &dto.SubmitScriptRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
				Content:   "First draft",
			}, testMetadata())
			require.NoError(t, err)

			review, err := flow.ReviewScript(ctx, &dto.ReviewRequest{
				BrandID:  brand.ID,
				UUID:     engagement.UUID.String(),
				Action:   "revision_requested",
				Feedback: utils.ToPtr("Tighten the intro"),
			}, testMetadata())
			require.NoError(t, err)
			assert.True(t, review.Updated)
			assert.Equal(t, string(models.ReviewStateRevisionRequested), review.State)

			// Resubmission clears the feedback and goes back to pending
			_, err = flow.SubmitScript(ctx, &dto.SubmitScriptRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
				Content:   "Second draft",
			}, testMetadata())
			require.NoError(t, err)

			stored, err := engagementRepo.ByUUID(ctx, engagement.UUID.String())
			require.NoError(t, err)
			assert.Equal(t, models.ReviewStatePending, stored.ScriptState)
			assert.Nil(t, stored.ScriptFeedback)
			require.NotNil(t, stored.ScriptContent)
			assert.Equal(t, "Second draft", *stored.ScriptContent)

			review, err = flow.ReviewScript(ctx, &dto.ReviewRequest{
				BrandID: brand.ID,
				UUID:    engagement.UUID.String(),
				Action:  "approved",
			}, testMetadata())
			require.NoError(t, err)
			assert.True(t, review.Updated)
			assert.Equal(t, string(models.ReviewStateApproved), review.State)
		})

		t.Run("DoubleReviewIsNoOp", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseInProduction)
			require.NoError(t, err)
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.FinalizedEngagement(4000))
			require.NoError(t, err)

			_, err = flow.SubmitScript(ctx, &dto.SubmitScriptRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
				Content:   "Draft",
			}, testMetadata())
			require.NoError(t, err)

			first, err := flow.ReviewScript(ctx, &dto.ReviewRequest{
				BrandID: brand.ID,
				UUID:    engagement.UUID.String(),
				Action:  "approved",
			}, testMetadata())
			require.NoError(t, err)
			assert.True(t, first.Updated)

			second, err := flow.ReviewScript(ctx, &dto.ReviewRequest{
				BrandID: brand.ID,
				UUID:    engagement.UUID.String(),
				Action:  "approved",
			}, testMetadata())
			require.NoError(t, err)
			assert.False(t, second.Updated)
			assert.Equal(t, string(models.ReviewStateApproved), second.State)
		})

		t.Run("SubmitBeforeBrief", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseCreatorsAreFinal)
			require.NoError(t, err)
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.FinalizedEngagement(4000))
			require.NoError(t, err)

			_, err = flow.SubmitScript(ctx, &dto.SubmitScriptRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
				Content:   "Draft",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsBriefNotPublished(err))
		})

		t.Run("SubmitWithoutFinalizedAmount", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseBriefPublished)
			require.NoError(t, err)
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.AcceptedEngagement)
			require.NoError(t, err)

			_, err = flow.SubmitScript(ctx, &dto.SubmitScriptRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
				Content:   "Draft",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsNegotiationNotFinalized(err))
		})

		t.Run("NegativeReviewRequiresFeedback", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseInProduction)
			require.NoError(t, err)
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.FinalizedEngagement(4000))
			require.NoError(t, err)

			_, err = flow.SubmitScript(ctx, &dto.SubmitScriptRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
				Content:   "Draft",
			}, testMetadata())
			require.NoError(t, err)

			_, err = flow.ReviewScript(ctx, &dto.ReviewRequest{
				BrandID: brand.ID,
				UUID:    engagement.UUID.String(),
				Action:  "rejected",
			}, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.KindValidation, businessflow.KindOf(err))
		})

		t.Run("BatchReviewCountsStaleEntries", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseInProduction)
			require.NoError(t, err)

			pending, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			pendingEng, err := fixtures.CreateTestEngagement(campaign.ID, pending.ID, testingutil.FinalizedEngagement(4000))
			require.NoError(t, err)
			_, err = flow.SubmitScript(ctx, &dto.SubmitScriptRequest{
				CreatorID: pending.ID,
				UUID:      pendingEng.UUID.String(),
				Content:   "Draft",
			}, testMetadata())
			require.NoError(t, err)

			// This creator never submitted, so the verdict is stale
			idle, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			_, err = fixtures.CreateTestEngagement(campaign.ID, idle.ID, testingutil.FinalizedEngagement(4000))
			require.NoError(t, err)

			// And this creator is not on the campaign at all
			stranger, err := fixtures.CreateTestCreator()
			require.NoError(t, err)

			resp, err := flow.BatchReviewScripts(ctx, &dto.BatchReviewRequest{
				BrandID: brand.ID,
				UUID:    campaign.UUID.String(),
				Updates: []dto.BatchReviewEntry{
					{CreatorID: pending.ID, Action: "approved"},
					{CreatorID: idle.ID, Action: "rejected", Feedback: utils.ToPtr("off brief")},
					{CreatorID: stranger.ID, Action: "approved"},
				},
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 1, resp.ApprovedCount)
			assert.Equal(t, 0, resp.RejectedCount)
			assert.Equal(t, 2, resp.StaleCount)
		})

		return nil
	})
	require.NoError(t, err)
}
