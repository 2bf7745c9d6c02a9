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

func newContentFlow(testDB *testingutil.TestDB) businessflow.ContentFlow {
	return businessflow.NewContentFlow(
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

func TestContentFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newContentFlow(testDB)
		engagementRepo := repository.NewEngagementRepository(testDB.DB)
		ctx := context.Background()

		brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseInProduction)
		require.NoError(t, err)

		t.Run("UploadReviewGoLive", func(t *testing.T) {
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.ScriptApprovedEngagement(4000))
			require.NoError(t, err)

			uploadResp, err := flow.UploadContent(ctx, &dto.UploadContentRequest{
				CreatorID:  creator.ID,
				UUID:       engagement.UUID.String(),
				ContentURI: "https://cdn.example.com/final-cut.mp4",
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, string(models.ReviewStatePending), uploadResp.ContentState)

			reviewResp, err := flow.ReviewContent(ctx, &dto.ReviewRequest{
				BrandID: brand.ID,
				UUID:    engagement.UUID.String(),
				Action:  "approved",
			}, testMetadata())
			require.NoError(t, err)
			assert.True(t, reviewResp.Updated)
			assert.Equal(t, string(models.ReviewStateApproved), reviewResp.State)

			liveResp, err := flow.GoLive(ctx, &dto.GoLiveRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
				LiveURI:   "https://platform.example.com/p/456",
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, string(models.ReviewStateLive), liveResp.ContentState)
			assert.Equal(t, "https://platform.example.com/p/456", liveResp.LiveURI)

			stored, err := engagementRepo.ByUUID(ctx, engagement.UUID.String())
			require.NoError(t, err)
			assert.Equal(t, models.ReviewStateLive, stored.ContentState)
			require.NotNil(t, stored.LiveURI)
			assert.Equal(t, "https://platform.example.com/p/456", *stored.LiveURI)
		})

		t.Run("UploadRequiresApprovedScript", func(t *testing.T) {
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.FinalizedEngagement(4000))
			require.NoError(t, err)

			_, err = flow.UploadContent(ctx, &dto.UploadContentRequest{
				CreatorID:  creator.ID,
				UUID:       engagement.UUID.String(),
				ContentURI: "https://cdn.example.com/early.mp4",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsScriptNotApproved(err))
		})

		t.Run("ReuploadAfterRevisionRequest", func(t *testing.T) {
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.ScriptApprovedEngagement(4000))
			require.NoError(t, err)

			_, err = flow.UploadContent(ctx, &dto.UploadContentRequest{
				CreatorID:  creator.ID,
				UUID:       engagement.UUID.String(),
				ContentURI: "https://cdn.example.com/v1.mp4",
			}, testMetadata())
			require.NoError(t, err)

			_, err = flow.ReviewContent(ctx, &dto.ReviewRequest{
				BrandID:  brand.ID,
				UUID:     engagement.UUID.String(),
				Action:   "revision_requested",
				Feedback: utils.ToPtr("Logo is cropped in the outro"),
			}, testMetadata())
			require.NoError(t, err)

			_, err = flow.UploadContent(ctx, &dto.UploadContentRequest{
				CreatorID:  creator.ID,
				UUID:       engagement.UUID.String(),
				ContentURI: "https://cdn.example.com/v2.mp4",
			}, testMetadata())
			require.NoError(t, err)

			stored, err := engagementRepo.ByUUID(ctx, engagement.UUID.String())
			require.NoError(t, err)
			assert.Equal(t, models.ReviewStatePending, stored.ContentState)
			assert.Nil(t, stored.ContentFeedback)
			require.NotNil(t, stored.ContentURI)
			assert.Equal(t, "https://cdn.example.com/v2.mp4", *stored.ContentURI)
		})

		t.Run("GoLiveRequiresApproval", func(t *testing.T) {
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.ScriptApprovedEngagement(4000))
			require.NoError(t, err)

			_, err = flow.UploadContent(ctx, &dto.UploadContentRequest{
				CreatorID:  creator.ID,
				UUID:       engagement.UUID.String(),
				ContentURI: "https://cdn.example.com/v1.mp4",
			}, testMetadata())
			require.NoError(t, err)

			_, err = flow.GoLive(ctx, &dto.GoLiveRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
				LiveURI:   "https://platform.example.com/p/789",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsContentNotApproved(err))
		})

		t.Run("LiveIsTerminal", func(t *testing.T) {
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.ContentLiveEngagement(4000))
			require.NoError(t, err)

			_, err = flow.GoLive(ctx, &dto.GoLiveRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
				LiveURI:   "https://platform.example.com/p/999",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsEngagementTerminal(err))

			_, err = flow.UploadContent(ctx, &dto.UploadContentRequest{
				CreatorID:  creator.ID,
				UUID:       engagement.UUID.String(),
				ContentURI: "https://cdn.example.com/late.mp4",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsEngagementTerminal(err))
		})

		t.Run("DoubleReviewIsNoOp", func(t *testing.T) {
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.ScriptApprovedEngagement(4000))
			require.NoError(t, err)

			_, err = flow.UploadContent(ctx, &dto.UploadContentRequest{
				CreatorID:  creator.ID,
				UUID:       engagement.UUID.String(),
				ContentURI: "https://cdn.example.com/v1.mp4",
			}, testMetadata())
			require.NoError(t, err)

			first, err := flow.ReviewContent(ctx, &dto.ReviewRequest{
				BrandID: brand.ID,
				UUID:    engagement.UUID.String(),
				Action:  "approved",
			}, testMetadata())
			require.NoError(t, err)
			assert.True(t, first.Updated)

			second, err := flow.ReviewContent(ctx, &dto.ReviewRequest{
				BrandID: brand.ID,
				UUID:    engagement.UUID.String(),
				Action:  "approved",
			}, testMetadata())
			require.NoError(t, err)
			assert.False(t, second.Updated)
		})

		t.Run("BatchReviewMixedVerdicts", func(t *testing.T) {
			batchCampaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseInProduction)
			require.NoError(t, err)

			submitted, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			submittedEng, err := fixtures.CreateTestEngagement(batchCampaign.ID, submitted.ID, testingutil.ScriptApprovedEngagement(4000))
			require.NoError(t, err)
			_, err = flow.UploadContent(ctx, &dto.UploadContentRequest{
				CreatorID:  submitted.ID,
				UUID:       submittedEng.UUID.String(),
				ContentURI: "https://cdn.example.com/a.mp4",
			}, testMetadata())
			require.NoError(t, err)

			idle, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			_, err = fixtures.CreateTestEngagement(batchCampaign.ID, idle.ID, testingutil.ScriptApprovedEngagement(4000))
			require.NoError(t, err)

			resp, err := flow.BatchReviewContents(ctx, &dto.BatchReviewRequest{
				BrandID: brand.ID,
				UUID:    batchCampaign.UUID.String(),
				Updates: []dto.BatchReviewEntry{
					{CreatorID: submitted.ID, Action: "revision_requested", Feedback: utils.ToPtr("Audio levels are off")},
					{CreatorID: idle.ID, Action: "approved"},
				},
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 0, resp.ApprovedCount)
			assert.Equal(t, 1, resp.RevisionRequestedCount)
			assert.Equal(t, 1, resp.StaleCount)
		})

		t.Run("ArchivedCampaignRejectsWrites", func(t *testing.T) {
			archived, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseInProduction)
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(archived).Update("archived_at", utils.UTCNow()).Error)

			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(archived.ID, creator.ID, testingutil.ScriptApprovedEngagement(4000))
			require.NoError(t, err)

			_, err = flow.UploadContent(ctx, &dto.UploadContentRequest{
				CreatorID:  creator.ID,
				UUID:       engagement.UUID.String(),
				ContentURI: "https://cdn.example.com/v1.mp4",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignArchived(err))
		})

		return nil
	})
	require.NoError(t, err)
}
