package tests

import (
	"bytes"
	"context"
	"fmt"
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
	"github.com/xuri/excelize/v2"
)

func newShortlistFlow(testDB *testingutil.TestDB) businessflow.ShortlistFlow {
	return businessflow.NewShortlistFlow(
		repository.NewCampaignRepository(testDB.DB),
		repository.NewEngagementRepository(testDB.DB),
		repository.NewCreatorRepository(testDB.DB),
		repository.NewAdminRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		services.NewMockNotificationService(),
		businessflow.NewSnapshotCache(nil, &config.CacheConfig{}),
		testDB.DB,
	)
}

func TestShortlistFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newShortlistFlow(testDB)
		campaignRepo := repository.NewCampaignRepository(testDB.DB)
		ctx := context.Background()

		brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)

		t.Run("FirstUploadMovesOutOfSourcing", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseSourcing)
			require.NoError(t, err)
			first, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			second, err := fixtures.CreateTestCreator()
			require.NoError(t, err)

			resp, err := flow.UploadShortlist(ctx, &dto.UploadShortlistRequest{
				AdminID: admin.ID,
				UUID:    campaign.UUID.String(),
				Entries: []dto.ShortlistEntry{
					{CreatorID: first.ID},
					{CreatorID: second.ID},
				},
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 2, resp.CreatedCount)
			assert.Equal(t, string(models.CampaignPhaseCreatorsShortlisted), resp.CampaignPhase)

			stored, err := campaignRepo.ByID(ctx, campaign.ID)
			require.NoError(t, err)
			assert.Equal(t, models.CampaignPhaseCreatorsShortlisted, stored.Phase)
		})

		t.Run("DuplicatesAndUnknownsAreCounted", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseSourcing)
			require.NoError(t, err)
			known, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			already, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			_, err = fixtures.CreateTestEngagement(campaign.ID, already.ID)
			require.NoError(t, err)
			inactive, err := fixtures.CreateTestCreator()
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(inactive).Update("is_active", false).Error)

			resp, err := flow.UploadShortlist(ctx, &dto.UploadShortlistRequest{
				AdminID: admin.ID,
				UUID:    campaign.UUID.String(),
				Entries: []dto.ShortlistEntry{
					{CreatorID: known.ID},
					{CreatorID: known.ID},
					{CreatorID: already.ID},
					{CreatorID: inactive.ID},
					{CreatorID: 99999999},
				},
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, 1, resp.CreatedCount)
			assert.Equal(t, 2, resp.DuplicateCount)
			assert.Equal(t, 2, resp.UnknownCount)
		})

		t.Run("BatchSizeCapped", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseSourcing)
			require.NoError(t, err)

			entries := make([]dto.ShortlistEntry, utils.MaxShortlistBatchSize+1)
			for i := range entries {
				entries[i] = dto.ShortlistEntry{CreatorID: uint(i + 1)}
			}

			_, err = flow.UploadShortlist(ctx, &dto.UploadShortlistRequest{
				AdminID: admin.ID,
				UUID:    campaign.UUID.String(),
				Entries: entries,
			}, testMetadata())
			require.Error(t, err)
			assert.Equal(t, businessflow.KindValidation, businessflow.KindOf(err))
		})

		t.Run("ClosedAfterSelectionCommitted", func(t *testing.T) {
			campaign, err := fixtures.CreateTestCampaign(brand.ID, models.CampaignPhaseCreatorsAreFinal)
			require.NoError(t, err)
			creator, err := fixtures.CreateTestCreator()
			require.NoError(t, err)

			_, err = flow.UploadShortlist(ctx, &dto.UploadShortlistRequest{
				AdminID: admin.ID,
				UUID:    campaign.UUID.String(),
				Entries: []dto.ShortlistEntry{{CreatorID: creator.ID}},
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsShortlistClosed(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func buildShortlistWorkbook(t *testing.T, header string, ids []string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	row := 1
	if header != "" {
		require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("A%d", row), header))
		row++
	}
	for _, id := range ids {
		require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("A%d", row), id))
		row++
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestParseShortlistXLSX(t *testing.T) {
	t.Run("HeaderedColumn", func(t *testing.T) {
		data := buildShortlistWorkbook(t, "creator_id", []string{"11", "42", "", "7"})

		entries, err := businessflow.ParseShortlistXLSX(data)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, uint(11), entries[0].CreatorID)
		assert.Equal(t, uint(42), entries[1].CreatorID)
		assert.Equal(t, uint(7), entries[2].CreatorID)
	})

	t.Run("HeaderlessNumericColumn", func(t *testing.T) {
		data := buildShortlistWorkbook(t, "", []string{"5", "6"})

		entries, err := businessflow.ParseShortlistXLSX(data)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, uint(5), entries[0].CreatorID)
	})

	t.Run("InvalidCell", func(t *testing.T) {
		data := buildShortlistWorkbook(t, "creator_id", []string{"abc"})

		_, err := businessflow.ParseShortlistXLSX(data)
		require.Error(t, err)
	})

	t.Run("NotASpreadsheet", func(t *testing.T) {
		_, err := businessflow.ParseShortlistXLSX([]byte("plain text"))
		require.Error(t, err)
	})
}
