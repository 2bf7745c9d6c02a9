package businessflow

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sidverse/gandaberunda/app/dto"
	"github.com/sidverse/gandaberunda/app/services"
	"github.com/sidverse/gandaberunda/models"
	"github.com/sidverse/gandaberunda/repository"
	"github.com/sidverse/gandaberunda/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ShortlistFlow handles the admin-driven creator shortlist
type ShortlistFlow interface {
	UploadShortlist(ctx context.Context, req *dto.UploadShortlistRequest, metadata *ClientMetadata) (*dto.UploadShortlistResponse, error)
}

// ShortlistFlowImpl implements the shortlist business flow
type ShortlistFlowImpl struct {
	campaignRepo   repository.CampaignRepository
	engagementRepo repository.EngagementRepository
	creatorRepo    repository.CreatorRepository
	adminRepo      repository.AdminRepository
	auditRepo      repository.AuditLogRepository
	notifier       services.NotificationService
	snapshots      *SnapshotCache
	db             *gorm.DB
}

// NewShortlistFlow creates a new shortlist flow instance
func NewShortlistFlow(
	campaignRepo repository.CampaignRepository,
	engagementRepo repository.EngagementRepository,
	creatorRepo repository.CreatorRepository,
	adminRepo repository.AdminRepository,
	auditRepo repository.AuditLogRepository,
	notifier services.NotificationService,
	snapshots *SnapshotCache,
	db *gorm.DB,
) ShortlistFlow {
	return &ShortlistFlowImpl{
		campaignRepo:   campaignRepo,
		engagementRepo: engagementRepo,
		creatorRepo:    creatorRepo,
		adminRepo:      adminRepo,
		auditRepo:      auditRepo,
		notifier:       notifier,
		snapshots:      snapshots,
		db:             db,
	}
}

// UploadShortlist proposes creators for a campaign. Unknown or inactive
// creators and creators already on the campaign are counted, never fatal.
// The first upload moves the campaign out of sourcing.
func (s *ShortlistFlowImpl) UploadShortlist(ctx context.Context, req *dto.UploadShortlistRequest, metadata *ClientMetadata) (*dto.UploadShortlistResponse, error) {
	admin, err := getAdmin(ctx, s.adminRepo, req.AdminID)
	if err != nil {
		return nil, NewBusinessError("ADMIN_LOOKUP_FAILED", KindNotFound, "Failed to lookup admin", err)
	}

	if len(req.Entries) > utils.MaxShortlistBatchSize {
		return nil, NewBusinessError("SHORTLIST_UPLOAD_FAILED", KindValidation, "Shortlist upload failed", ErrShortlistBatchTooLarge)
	}

	resp := &dto.UploadShortlistResponse{Message: "Shortlist uploaded"}
	var campaignUUID string

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		campaign, err := s.campaignRepo.ByUUID(txCtx, req.UUID)
		if err != nil {
			return err
		}
		if campaign == nil {
			return ErrCampaignNotFound
		}
		if err := campaignWritable(campaign); err != nil {
			return err
		}
		// The shortlist closes for good once the selection is committed
		if campaign.Phase != models.CampaignPhaseSourcing && campaign.Phase != models.CampaignPhaseCreatorsShortlisted {
			return ErrShortlistClosed
		}
		campaignUUID = campaign.UUID.String()

		seen := make(map[uint]bool, len(req.Entries))
		for _, entry := range req.Entries {
			if seen[entry.CreatorID] {
				resp.DuplicateCount++
				continue
			}
			seen[entry.CreatorID] = true

			creator, err := s.creatorRepo.ByID(txCtx, entry.CreatorID)
			if err != nil {
				return err
			}
			if creator == nil || (creator.IsActive != nil && !*creator.IsActive) {
				resp.UnknownCount++
				continue
			}

			existing, err := s.engagementRepo.ByCampaignAndCreator(txCtx, campaign.ID, creator.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				resp.DuplicateCount++
				continue
			}

			engagement := &models.Engagement{
				CampaignID:      campaign.ID,
				CreatorID:       creator.ID,
				ShortlistStatus: models.ShortlistStatusPending,
			}
			if err := s.engagementRepo.Save(txCtx, engagement); err != nil {
				return err
			}
			resp.CreatedCount++
		}

		resp.CampaignPhase = string(campaign.Phase)
		if resp.CreatedCount > 0 && campaign.Phase == models.CampaignPhaseSourcing {
			rows, err := s.campaignRepo.UpdatePhaseIf(txCtx, campaign.ID, models.CampaignPhaseSourcing, map[string]any{
				"phase": models.CampaignPhaseCreatorsShortlisted,
			})
			if err != nil {
				return err
			}
			if rows > 0 {
				resp.CampaignPhase = string(models.CampaignPhaseCreatorsShortlisted)
			}
		}
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Shortlist upload failed: %s", err.Error())
		_ = recordAudit(ctx, s.auditRepo, models.AuditActorAdmin, nil, nil, models.AuditActionShortlistUploadFailed, errMsg, false, &errMsg, metadata)
		return nil, wrapFlowError("SHORTLIST_UPLOAD_FAILED", "Shortlist upload failed", err)
	}

	s.snapshots.Invalidate(ctx, campaignUUID)

	msg := fmt.Sprintf("Admin %s shortlisted %d creators on campaign %s (%d duplicates, %d unknown)",
		admin.Username, resp.CreatedCount, campaignUUID, resp.DuplicateCount, resp.UnknownCount)
	_ = recordAudit(ctx, s.auditRepo, models.AuditActorAdmin, nil, nil, models.AuditActionShortlistUploaded, msg, true, nil, metadata)

	if resp.CreatedCount > 0 {
		s.notifyAsync(services.NotificationEvent{
			Kind:         services.NotifyShortlistUploaded,
			CampaignUUID: campaignUUID,
			Message:      fmt.Sprintf("%d creators were shortlisted", resp.CreatedCount),
		})
	}

	return resp, nil
}

// ParseShortlistXLSX extracts shortlist entries from an uploaded spreadsheet.
// The first sheet is scanned for a creator_id column (falling back to the
// first column); the header row is skipped when present.
func ParseShortlistXLSX(data []byte) ([]dto.ShortlistEntry, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	col := 0
	start := 0
	for i, cell := range rows[0] {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name == "creator_id" || name == "creator id" {
			col = i
			start = 1
			break
		}
	}
	if start == 0 {
		// No recognized header; skip the first row anyway if it is not numeric
		if _, err := strconv.ParseUint(strings.TrimSpace(firstCell(rows[0], col)), 10, 64); err != nil {
			start = 1
		}
	}

	entries := make([]dto.ShortlistEntry, 0, len(rows)-start)
	for i := start; i < len(rows); i++ {
		raw := strings.TrimSpace(firstCell(rows[i], col))
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid creator id %q", i+1, raw)
		}
		entries = append(entries, dto.ShortlistEntry{CreatorID: uint(id)})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no creator ids found in sheet %q", sheets[0])
	}
	return entries, nil
}

func firstCell(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}

func (s *ShortlistFlowImpl) notifyAsync(event services.NotificationEvent) {
	go func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.notifier.Notify(notifyCtx, event)
	}()
}
