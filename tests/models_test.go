// Package tests contains test cases for models and business flow packages to avoid circular imports
package tests

import (
	"testing"

	"github.com/sidverse/gandaberunda/models"
	testingutil "github.com/sidverse/gandaberunda/testing"
	"github.com/sidverse/gandaberunda/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegotiationState(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		for _, s := range []models.NegotiationState{
			models.NegotiationStateNone,
			models.NegotiationStateBidPending,
			models.NegotiationStateAmountNegotiated,
			models.NegotiationStateAmountFinalized,
			models.NegotiationStateRejected,
		} {
			assert.True(t, s.Valid(), s.String())
		}
		assert.False(t, models.NegotiationState("haggling").Valid())
	})

	t.Run("CanBid", func(t *testing.T) {
		assert.True(t, models.NegotiationStateNone.CanBid())
		assert.True(t, models.NegotiationStateBidPending.CanBid())
		assert.True(t, models.NegotiationStateAmountNegotiated.CanBid())
		assert.False(t, models.NegotiationStateAmountFinalized.CanBid())
		assert.False(t, models.NegotiationStateRejected.CanBid())
	})

	t.Run("Terminal", func(t *testing.T) {
		assert.True(t, models.NegotiationStateRejected.IsTerminal())
		assert.False(t, models.NegotiationStateAmountFinalized.IsTerminal())
		assert.True(t, models.NegotiationStateAmountFinalized.IsFinalized())
	})
}

func TestReviewState(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		for _, s := range []models.ReviewState{
			models.ReviewStateNone,
			models.ReviewStatePending,
			models.ReviewStateApproved,
			models.ReviewStateRejected,
			models.ReviewStateRevisionRequested,
			models.ReviewStateLive,
		} {
			assert.True(t, s.Valid(), s.String())
		}
		assert.False(t, models.ReviewState("draft").Valid())
	})

	t.Run("NeedsResubmission", func(t *testing.T) {
		assert.True(t, models.ReviewStateRejected.NeedsResubmission())
		assert.True(t, models.ReviewStateRevisionRequested.NeedsResubmission())
		assert.False(t, models.ReviewStatePending.NeedsResubmission())
		assert.False(t, models.ReviewStateApproved.NeedsResubmission())
	})
}

func TestReviewAction(t *testing.T) {
	t.Run("StateMapping", func(t *testing.T) {
		assert.Equal(t, models.ReviewStateApproved, models.ReviewActionApproved.State())
		assert.Equal(t, models.ReviewStateRejected, models.ReviewActionRejected.State())
		assert.Equal(t, models.ReviewStateRevisionRequested, models.ReviewActionRevisionRequested.State())
	})

	t.Run("Valid", func(t *testing.T) {
		assert.True(t, models.ReviewActionApproved.Valid())
		assert.False(t, models.ReviewAction("publish").Valid())
	})
}

func TestCampaignPhase(t *testing.T) {
	t.Run("SelectionCommitted", func(t *testing.T) {
		assert.False(t, models.CampaignPhaseSourcing.SelectionCommitted())
		assert.False(t, models.CampaignPhaseCreatorsShortlisted.SelectionCommitted())
		assert.True(t, models.CampaignPhaseCreatorsAreFinal.SelectionCommitted())
		assert.True(t, models.CampaignPhaseBriefPublished.SelectionCommitted())
		assert.True(t, models.CampaignPhaseInProduction.SelectionCommitted())
		assert.True(t, models.CampaignPhaseCompleted.SelectionCommitted())
	})

	t.Run("AwaitingBriefIsNeverStored", func(t *testing.T) {
		assert.False(t, models.CampaignPhaseAwaitingBrief.Valid())
	})
}

func TestCampaignDerivedPhase(t *testing.T) {
	t.Run("AwaitingBrief", func(t *testing.T) {
		c := &models.Campaign{Phase: models.CampaignPhaseCreatorsAreFinal}
		assert.True(t, c.AwaitingBrief())
		assert.Equal(t, models.CampaignPhaseAwaitingBrief, c.EffectivePhase())

		c.BriefPublishedAt = utils.ToPtr(utils.UTCNow())
		assert.False(t, c.AwaitingBrief())
		assert.Equal(t, models.CampaignPhaseCreatorsAreFinal, c.EffectivePhase())
	})

	t.Run("BriefVisible", func(t *testing.T) {
		c := &models.Campaign{Phase: models.CampaignPhaseCreatorsAreFinal}
		assert.False(t, c.BriefVisible())
		c.BriefPublishedAt = utils.ToPtr(utils.UTCNow())
		assert.True(t, c.BriefVisible())
	})
}

func TestEngagementGates(t *testing.T) {
	t.Run("CanSubmitScript", func(t *testing.T) {
		e := &models.Engagement{
			ShortlistStatus:  models.ShortlistStatusAccepted,
			NegotiationState: models.NegotiationStateAmountFinalized,
		}
		assert.True(t, e.CanSubmitScript())

		e.ScriptState = models.ReviewStatePending
		assert.False(t, e.CanSubmitScript())

		e.ScriptState = models.ReviewStateRevisionRequested
		assert.True(t, e.CanSubmitScript())

		e.NegotiationState = models.NegotiationStateBidPending
		e.ScriptState = models.ReviewStateNone
		assert.False(t, e.CanSubmitScript())
	})

	t.Run("CanUploadContent", func(t *testing.T) {
		e := &models.Engagement{
			ShortlistStatus:  models.ShortlistStatusAccepted,
			NegotiationState: models.NegotiationStateAmountFinalized,
			ScriptState:      models.ReviewStateApproved,
		}
		assert.True(t, e.CanUploadContent())

		e.ContentState = models.ReviewStatePending
		assert.False(t, e.CanUploadContent())

		e.ContentState = models.ReviewStateRejected
		assert.True(t, e.CanUploadContent())

		e.ScriptState = models.ReviewStatePending
		e.ContentState = models.ReviewStateNone
		assert.False(t, e.CanUploadContent())
	})

	t.Run("CanGoLive", func(t *testing.T) {
		e := &models.Engagement{
			ShortlistStatus:  models.ShortlistStatusAccepted,
			NegotiationState: models.NegotiationStateAmountFinalized,
			ScriptState:      models.ReviewStateApproved,
			ContentState:     models.ReviewStateApproved,
		}
		assert.True(t, e.CanGoLive())

		e.ContentState = models.ReviewStateLive
		assert.False(t, e.CanGoLive())
		assert.True(t, e.IsTerminal())
	})

	t.Run("TerminalStates", func(t *testing.T) {
		e := &models.Engagement{
			ShortlistStatus:  models.ShortlistStatusRejected,
			NegotiationState: models.NegotiationStateNone,
		}
		assert.True(t, e.IsTerminal())

		e = &models.Engagement{
			ShortlistStatus:  models.ShortlistStatusAccepted,
			NegotiationState: models.NegotiationStateRejected,
		}
		assert.True(t, e.IsTerminal())
	})
}

func TestModelHooks(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("EngagementDefaults", func(t *testing.T) {
			brand, err := fixtures.CreateTestBrand()
			require.NoError(t, err)
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseSourcing)
			require.NoError(t, err)
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)

			engagement, err := fixtures.CreateTestEngagement(campaign.ID, creator.ID)
			require.NoError(t, err)
			assert.NotZero(t, engagement.ID)
			assert.NotEmpty(t, engagement.UUID)
			assert.Equal(t, models.ShortlistStatusPending, engagement.ShortlistStatus)
			assert.Equal(t, models.NegotiationStateNone, engagement.NegotiationState)
			assert.Equal(t, models.ReviewStateNone, engagement.ScriptState)
			assert.Equal(t, models.ReviewStateNone, engagement.ContentState)
		})

		t.Run("CampaignDefaults", func(t *testing.T) {
			brand, err := fixtures.CreateTestBrand()
			require.NoError(t, err)
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseSourcing)
			require.NoError(t, err)
			assert.NotEmpty(t, campaign.UUID)
			assert.Equal(t, models.CampaignPhaseSourcing, campaign.Phase)
			assert.Nil(t, campaign.ArchivedAt)
		})

		t.Run("UniqueCampaignCreatorPair", func(t *testing.T) {
			brand, err := fixtures.CreateTestBrand()
			require.NoError(t, err)
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseSourcing)
			require.NoError(t, err)
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)

			_, err = fixtures.CreateTestEngagement(campaign.ID, creator.ID)
			require.NoError(t, err)
			_, err = fixtures.CreateTestEngagement(campaign.ID, creator.ID)
			assert.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}
