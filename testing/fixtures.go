// Package testing provides test utilities and database setup for testing the campaign workflow
package testing

import (
	"fmt"
	"math/rand"

	"github.com/sidverse/gandaberunda/models"
	"github.com/sidverse/gandaberunda/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

func testPasswordHash() string {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	return string(hashed)
}

// CreateTestBrand creates an active brand with unique contact details
func (tf *TestFixtures) CreateTestBrand() (*models.Brand, error) {
	randomDigits := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)

	brand := &models.Brand{
		UUID:          uuid.New(),
		CompanyName:   fmt.Sprintf("Acme Brand %s", randomDigits),
		ContactName:   "Jane Smith",
		ContactEmail:  fmt.Sprintf("jane.%s@example.com", randomDigits),
		ContactMobile: fmt.Sprintf("+919%s", randomDigits),
		PasswordHash:  testPasswordHash(),
		IsActive:      utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(brand).Error; err != nil {
		return nil, fmt.Errorf("failed to create test brand: %w", err)
	}

	return brand, nil
}

// CreateTestCreator creates an active creator with a unique handle
func (tf *TestFixtures) CreateTestCreator() (*models.Creator, error) {
	randomDigits := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)

	creator := &models.Creator{
		UUID:          uuid.New(),
		Handle:        fmt.Sprintf("creator_%s", randomDigits),
		DisplayName:   "Test Creator",
		FollowerCount: 50000,
		ContactEmail:  fmt.Sprintf("creator.%s@example.com", randomDigits),
		ContactMobile: fmt.Sprintf("+918%s", randomDigits),
		PasswordHash:  testPasswordHash(),
		IsActive:      utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(creator).Error; err != nil {
		return nil, fmt.Errorf("failed to create test creator: %w", err)
	}

	return creator, nil
}

// CreateTestAdmin creates an active operator account
func (tf *TestFixtures) CreateTestAdmin() (*models.Admin, error) {
	randomDigits := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)

	admin := &models.Admin{
		UUID:         uuid.New(),
		Username:     fmt.Sprintf("ops_%s", randomDigits),
		PasswordHash: testPasswordHash(),
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}

	return admin, nil
}

// CreateTestCampaign creates a campaign for the given brand in the given phase
func (tf *TestFixtures) CreateTestCampaign(brandID uint, phase models.CampaignPhase) (*models.Campaign, error) {
	campaign := &models.Campaign{
		UUID:    uuid.New(),
		BrandID: brandID,
		Phase:   phase,
		Title:   fmt.Sprintf("Launch Campaign %d", rand.Intn(100000)),
		Budget:  500000,
		Targeting: models.CampaignTargeting{
			Categories:   []string{"tech"},
			MinFollowers: utils.ToPtr(uint64(10000)),
		},
	}

	// Phases past selection imply the earlier milestones happened
	if phase.SelectionCommitted() {
		campaign.AmountsFinalizedAt = utils.ToPtr(utils.UTCNow())
	}
	if phase == models.CampaignPhaseBriefPublished || phase == models.CampaignPhaseInProduction || phase == models.CampaignPhaseCompleted {
		campaign.Brief = models.CampaignBrief{
			Title: utils.ToPtr("Product launch brief"),
			Focus: utils.ToPtr("Show the product in daily use"),
		}
		campaign.BriefPublishedAt = utils.ToPtr(utils.UTCNow())
	}

	if err := tf.DB.DB.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create test campaign: %w", err)
	}

	return campaign, nil
}

// CreateTestEngagement creates an engagement row and applies the given mutations
func (tf *TestFixtures) CreateTestEngagement(campaignID, creatorID uint, mutate ...func(*models.Engagement)) (*models.Engagement, error) {
	engagement := &models.Engagement{
		UUID:       uuid.New(),
		CampaignID: campaignID,
		CreatorID:  creatorID,
	}

	for _, fn := range mutate {
		fn(engagement)
	}

	if err := tf.DB.DB.Create(engagement).Error; err != nil {
		return nil, fmt.Errorf("failed to create test engagement: %w", err)
	}

	return engagement, nil
}

// AcceptedEngagement marks the engagement accepted on the shortlist
func AcceptedEngagement(e *models.Engagement) {
	e.ShortlistStatus = models.ShortlistStatusAccepted
}

// FinalizedEngagement marks the engagement accepted with a finalized amount
func FinalizedEngagement(amount uint64) func(*models.Engagement) {
	return func(e *models.Engagement) {
		e.ShortlistStatus = models.ShortlistStatusAccepted
		e.NegotiationState = models.NegotiationStateAmountFinalized
		e.FinalAmount = utils.ToPtr(amount)
	}
}

// ScriptApprovedEngagement puts the engagement past script approval
func ScriptApprovedEngagement(amount uint64) func(*models.Engagement) {
	return func(e *models.Engagement) {
		FinalizedEngagement(amount)(e)
		e.ScriptState = models.ReviewStateApproved
		e.ScriptContent = utils.ToPtr("Final script draft")
		e.ScriptSubmittedAt = utils.ToPtr(utils.UTCNow())
	}
}

// ContentLiveEngagement puts the engagement in its terminal live state
func ContentLiveEngagement(amount uint64) func(*models.Engagement) {
	return func(e *models.Engagement) {
		ScriptApprovedEngagement(amount)(e)
		e.ContentState = models.ReviewStateLive
		e.ContentURI = utils.ToPtr("https://cdn.example.com/video.mp4")
		e.LiveURI = utils.ToPtr("https://platform.example.com/p/123")
		e.ContentSubmittedAt = utils.ToPtr(utils.UTCNow())
	}
}
