package tests

import (
	"context"
	"testing"
	"time"

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

func newNegotiationFlow(testDB *testingutil.TestDB) businessflow.NegotiationFlow {
	return businessflow.NewNegotiationFlow(
		repository.NewEngagementRepository(testDB.DB),
		repository.NewCreatorRepository(testDB.DB),
		repository.NewBrandRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		services.NewMockNotificationService(),
		businessflow.NewSnapshotCache(nil, &config.CacheConfig{}),
		testDB.DB,
	)
}

func testMetadata() *businessflow.ClientMetadata {
	return businessflow.NewClientMetadata("127.0.0.1", "test-agent")
}

func TestNegotiationFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newNegotiationFlow(testDB)
		engagementRepo := repository.NewEngagementRepository(testDB.DB)
		ctx := context.Background()

		brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseCreatorsShortlisted)
		require.NoError(t, err)

		t.Run("BidCounterAcceptRoundTrip", func(t *testing.T) {
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.AcceptedEngagement)
			require.NoError(t, err)

			// Creator opens with 5000
			bidResp, err := flow.SubmitBid(ctx, &dto.SubmitBidRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
				Amount:    5000,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, string(models.NegotiationStateBidPending), bidResp.NegotiationState)
			assert.Equal(t, uint64(5000), bidResp.CreatorBidAmount)

			// Brand counters at 4000
			counterResp, err := flow.RespondToBid(ctx, &dto.RespondToBidRequest{
				BrandID: brand.ID,
				UUID:    engagement.UUID.String(),
				Action:  "counter",
				Amount:  utils.ToPtr(uint64(4000)),
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, string(models.NegotiationStateAmountNegotiated), counterResp.NegotiationState)

			// Creator accepts the proposal; the final amount is the brand's 4000
			acceptResp, err := flow.AcceptDeal(ctx, &dto.AcceptDealRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, string(models.NegotiationStateAmountFinalized), acceptResp.NegotiationState)
			assert.Equal(t, uint64(4000), acceptResp.FinalAmount)

			stored, err := engagementRepo.ByUUID(ctx, engagement.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, models.NegotiationStateAmountFinalized, stored.NegotiationState)
			require.NotNil(t, stored.FinalAmount)
			assert.Equal(t, uint64(4000), *stored.FinalAmount)
		})

		t.Run("BrandAcceptLocksCreatorBid", func(t *testing.T) {
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.AcceptedEngagement)
			require.NoError(t, err)

			_, err = flow.SubmitBid(ctx, &dto.SubmitBidRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
				Amount:    7500,
			}, testMetadata())
			require.NoError(t, err)

			resp, err := flow.RespondToBid(ctx, &dto.RespondToBidRequest{
				BrandID: brand.ID,
				UUID:    engagement.UUID.String(),
				Action:  "accept",
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, string(models.NegotiationStateAmountFinalized), resp.NegotiationState)
			require.NotNil(t, resp.FinalAmount)
			assert.Equal(t, uint64(7500), *resp.FinalAmount)
		})

		t.Run("RebidSupersedesProposal", func(t *testing.T) {
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.AcceptedEngagement)
			require.NoError(t, err)

			_, err = flow.SubmitBid(ctx, &dto.SubmitBidRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
				Amount:    5000,
			}, testMetadata())
			require.NoError(t, err)

			_, err = flow.RespondToBid(ctx, &dto.RespondToBidRequest{
				BrandID: brand.ID,
				UUID:    engagement.UUID.String(),
				Action:  "counter",
				Amount:  utils.ToPtr(uint64(4200)),
			}, testMetadata())
			require.NoError(t, err)

			// Creator bids again instead of accepting, clearing the proposal
			_, err = flow.SubmitBid(ctx, &dto.SubmitBidRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
				Amount:    4600,
			}, testMetadata())
			require.NoError(t, err)

			stored, err := engagementRepo.ByUUID(ctx, engagement.UUID.String())
			require.NoError(t, err)
			assert.Equal(t, models.NegotiationStateBidPending, stored.NegotiationState)
			assert.Nil(t, stored.BrandProposedAmount)
			assert.Nil(t, stored.FinalAmount)
			require.NotNil(t, stored.CreatorBidAmount)
			assert.Equal(t, uint64(4600), *stored.CreatorBidAmount)
		})

		t.Run("BidRequiresAcceptedShortlist", func(t *testing.T) {
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID)
			require.NoError(t, err)

			_, err = flow.SubmitBid(ctx, &dto.SubmitBidRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
				Amount:    5000,
			}, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.KindPreconditionFailed, businessflow.KindOf(err))
		})

		t.Run("BidClosedAfterFinalization", func(t *testing.T) {
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.FinalizedEngagement(3000))
			require.NoError(t, err)

			_, err = flow.SubmitBid(ctx, &dto.SubmitBidRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
				Amount:    5000,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsBidNotAllowed(err))
		})

		t.Run("RespondWithoutPendingBid", func(t *testing.T) {
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.AcceptedEngagement)
			require.NoError(t, err)

			_, err = flow.RespondToBid(ctx, &dto.RespondToBidRequest{
				BrandID: brand.ID,
				UUID:    engagement.UUID.String(),
				Action:  "accept",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsNoBidPending(err))
		})

		t.Run("CounterRequiresAmount", func(t *testing.T) {
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.AcceptedEngagement)
			require.NoError(t, err)

			_, err = flow.SubmitBid(ctx, &dto.SubmitBidRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
				Amount:    5000,
			}, testMetadata())
			require.NoError(t, err)

			_, err = flow.RespondToBid(ctx, &dto.RespondToBidRequest{
				BrandID: brand.ID,
				UUID:    engagement.UUID.String(),
				Action:  "counter",
			}, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.KindValidation, businessflow.KindOf(err))
		})

		t.Run("FailedCounterAuditedAsCounter", func(t *testing.T) {
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.AcceptedEngagement)
			require.NoError(t, err)

			var counteredBefore, acceptedBefore int64
			require.NoError(t, testDB.DB.Model(&models.AuditLog{}).
				Where("action = ? AND success = ?", models.AuditActionBidCountered, false).
				Count(&counteredBefore).Error)
			require.NoError(t, testDB.DB.Model(&models.AuditLog{}).
				Where("action = ? AND success = ?", models.AuditActionBidAccepted, false).
				Count(&acceptedBefore).Error)

			// No bid is pending, so the counter fails
			_, err = flow.RespondToBid(ctx, &dto.RespondToBidRequest{
				BrandID: brand.ID,
				UUID:    engagement.UUID.String(),
				Action:  "counter",
				Amount:  utils.ToPtr(uint64(4000)),
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsNoBidPending(err))

			// The failure is audited under the attempted action, not accept
			var counteredAfter, acceptedAfter int64
			require.NoError(t, testDB.DB.Model(&models.AuditLog{}).
				Where("action = ? AND success = ?", models.AuditActionBidCountered, false).
				Count(&counteredAfter).Error)
			require.NoError(t, testDB.DB.Model(&models.AuditLog{}).
				Where("action = ? AND success = ?", models.AuditActionBidAccepted, false).
				Count(&acceptedAfter).Error)
			assert.Equal(t, counteredBefore+1, counteredAfter)
			assert.Equal(t, acceptedBefore, acceptedAfter)
		})

		t.Run("RejectDealIsTerminal", func(t *testing.T) {
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.AcceptedEngagement)
			require.NoError(t, err)

			resp, err := flow.RejectDeal(ctx, &dto.RejectDealRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, string(models.NegotiationStateRejected), resp.NegotiationState)

			// Nothing moves a rejected negotiation
			_, err = flow.RejectDeal(ctx, &dto.RejectDealRequest{
				CreatorID: creator.ID,
				UUID:      engagement.UUID.String(),
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsEngagementTerminal(err))
		})

		t.Run("ConcurrentDecisionsLoserGetsStaleState", func(t *testing.T) {
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, func(e *models.Engagement) {
				e.ShortlistStatus = models.ShortlistStatusAccepted
				e.NegotiationState = models.NegotiationStateAmountNegotiated
				e.BrandProposedAmount = utils.ToPtr(uint64(4200))
			})
			require.NoError(t, err)

			// A competing rejection holds the row lock uncommitted while the
			// accept runs. The accept reads the old state, then its guarded
			// update blocks until the rejection commits and wins.
			tx := testDB.DB.Begin()
			require.NoError(t, tx.Error)
			require.NoError(t, tx.Model(&models.Engagement{}).
				Where("id = ?", engagement.ID).
				Update("negotiation_state", models.NegotiationStateRejected).Error)

			acceptDone := make(chan error, 1)
			go func() {
				_, acceptErr := flow.AcceptDeal(ctx, &dto.AcceptDealRequest{
					CreatorID: creator.ID,
					UUID:      engagement.UUID.String(),
				}, testMetadata())
				acceptDone <- acceptErr
			}()

			time.Sleep(300 * time.Millisecond)
			require.NoError(t, tx.Commit().Error)

			err = <-acceptDone
			require.Error(t, err)
			assert.True(t, businessflow.IsStaleState(err))
			assert.Equal(t, businessflow.KindStaleState, businessflow.KindOf(err))

			stored, err := engagementRepo.ByUUID(ctx, engagement.UUID.String())
			require.NoError(t, err)
			assert.Equal(t, models.NegotiationStateRejected, stored.NegotiationState)
			assert.Nil(t, stored.FinalAmount)
		})

		t.Run("ForeignCreatorDenied", func(t *testing.T) {
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			other, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID, testingutil.AcceptedEngagement)
			require.NoError(t, err)

			_, err = flow.SubmitBid(ctx, &dto.SubmitBidRequest{
				CreatorID: other.ID,
				UUID:      engagement.UUID.String(),
				Amount:    5000,
			}, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.KindForbidden, businessflow.KindOf(err))
		})

		return nil
	})
	require.NoError(t, err)
}
