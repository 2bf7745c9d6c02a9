// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sidverse/gandaberunda/app/dto"
	businessflow "github.com/sidverse/gandaberunda/business_flow"
)

// CampaignHandlerInterface defines the contract for campaign handlers
type CampaignHandlerInterface interface {
	CreateCampaign(c fiber.Ctx) error
	ListCampaigns(c fiber.Ctx) error
	GetCampaign(c fiber.Ctx) error
	ArchiveCampaign(c fiber.Ctx) error
	RespondToCreators(c fiber.Ctx) error
	FinalizeCreatorAmounts(c fiber.Ctx) error
	SubmitCreatorSelection(c fiber.Ctx) error
	PublishBrief(c fiber.Ctx) error
	CompleteCampaign(c fiber.Ctx) error
	ListCampaignEngagements(c fiber.Ctx) error
}

// CampaignHandler handles campaign-related HTTP requests
type CampaignHandler struct {
	campaignFlow businessflow.CampaignFlow
	validator    *validator.Validate
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaignFlow businessflow.CampaignFlow) *CampaignHandler {
	return &CampaignHandler{
		campaignFlow: campaignFlow,
		validator:    validator.New(),
	}
}

func brandIDFromContext(c fiber.Ctx) (uint, error) {
	brandID, ok := c.Locals("brand_id").(uint)
	if !ok {
		return 0, errorResponse(c, fiber.StatusUnauthorized, "Brand ID not found in context", "MISSING_BRAND_ID", nil)
	}
	return brandID, nil
}

// CreateCampaign handles the campaign creation process
// @Summary Create Campaign
// @Description Create a new campaign in the sourcing phase
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param request body dto.CreateCampaignRequest true "Campaign creation data"
// @Success 201 {object} dto.APIResponse{data=dto.CreateCampaignResponse} "Campaign created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 401 {object} dto.APIResponse "Unauthorized - brand not found or inactive"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns [post]
func (h *CampaignHandler) CreateCampaign(c fiber.Ctx) error {
	var req dto.CreateCampaignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	brandID, err := brandIDFromContext(c)
	if err != nil {
		return err
	}
	req.BrandID = brandID

	result, err := h.campaignFlow.CreateCampaign(requestContext(c, "/api/v1/campaigns"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Campaign creation", err)
	}

	return successResponse(c, fiber.StatusCreated, "Campaign created successfully", result)
}

// ListCampaigns handles campaign listing with filters
// @Summary List Campaigns
// @Description List the authenticated brand's campaigns with optional phase, title and archived filters
// @Tags Campaigns
// @Produce json
// @Param phase query string false "Campaign phase filter"
// @Param title query string false "Title substring filter"
// @Param archived query bool false "Archived filter"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListCampaignsResponse} "Campaigns retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns [get]
func (h *CampaignHandler) ListCampaigns(c fiber.Ctx) error {
	req := dto.ListCampaignsRequest{}

	if phase := c.Query("phase"); phase != "" {
		req.Phase = &phase
	}
	if title := c.Query("title"); title != "" {
		req.Title = &title
	}
	if archived := c.Query("archived"); archived != "" {
		v, err := strconv.ParseBool(archived)
		if err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid archived filter", "INVALID_QUERY_PARAM", nil)
		}
		req.Archived = &v
	}
	req.Page, _ = strconv.Atoi(c.Query("page", "1"))
	req.PageSize, _ = strconv.Atoi(c.Query("page_size", "20"))

	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	brandID, err := brandIDFromContext(c)
	if err != nil {
		return err
	}
	req.BrandID = brandID

	result, err := h.campaignFlow.ListCampaigns(requestContext(c, "/api/v1/campaigns"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Campaign listing", err)
	}

	return successResponse(c, fiber.StatusOK, "Campaigns retrieved successfully", result)
}

// GetCampaign handles the campaign snapshot retrieval
// @Summary Get Campaign
// @Description Get the full campaign snapshot including engagement state counts
// @Tags Campaigns
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Success 200 {object} dto.APIResponse{data=dto.GetCampaignResponse} "Campaign retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Campaign belongs to another brand"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/campaigns/{uuid} [get]
func (h *CampaignHandler) GetCampaign(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Campaign UUID is required", "MISSING_CAMPAIGN_UUID", nil)
	}

	brandID, err := brandIDFromContext(c)
	if err != nil {
		return err
	}

	result, err := h.campaignFlow.GetCampaign(requestContext(c, "/api/v1/campaigns/"+campaignUUID), campaignUUID, brandID, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Campaign retrieval", err)
	}

	return successResponse(c, fiber.StatusOK, "Campaign retrieved successfully", result)
}

// ArchiveCampaign handles the campaign archive process
// @Summary Archive Campaign
// @Description Archive a campaign; archived campaigns stay readable but reject writes
// @Tags Campaigns
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Success 200 {object} dto.APIResponse{data=dto.ArchiveCampaignResponse} "Campaign archived"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Campaign belongs to another brand"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 412 {object} dto.APIResponse "Campaign already archived"
// @Router /api/v1/campaigns/{uuid}/archive [post]
func (h *CampaignHandler) ArchiveCampaign(c fiber.Ctx) error {
	req := dto.ArchiveCampaignRequest{UUID: c.Params("uuid")}

	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	brandID, err := brandIDFromContext(c)
	if err != nil {
		return err
	}
	req.BrandID = brandID

	result, err := h.campaignFlow.ArchiveCampaign(requestContext(c, "/api/v1/campaigns/"+req.UUID+"/archive"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Campaign archive", err)
	}

	return successResponse(c, fiber.StatusOK, "Campaign archived", result)
}

// RespondToCreators handles the brand's shortlist verdicts
// @Summary Respond To Creators
// @Description Accept or reject shortlisted creators in bulk; stale verdicts are counted, not fatal
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Param request body dto.RespondCreatorsRequest true "Accept/reject verdicts"
// @Success 200 {object} dto.APIResponse{data=dto.RespondCreatorsResponse} "Creator responses recorded"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 412 {object} dto.APIResponse "Selection already committed"
// @Router /api/v1/campaigns/{uuid}/creators/respond [post]
func (h *CampaignHandler) RespondToCreators(c fiber.Ctx) error {
	var req dto.RespondCreatorsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = c.Params("uuid")

	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	brandID, err := brandIDFromContext(c)
	if err != nil {
		return err
	}
	req.BrandID = brandID

	result, err := h.campaignFlow.RespondToCreators(requestContext(c, "/api/v1/campaigns/"+req.UUID+"/creators/respond"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Creator response", err)
	}

	return successResponse(c, fiber.StatusOK, "Creator responses recorded", result)
}

// FinalizeCreatorAmounts handles the idempotent amount finalization
// @Summary Finalize Creator Amounts
// @Description Mark the negotiation round done, locking in whatever final amounts exist
// @Tags Campaigns
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Success 200 {object} dto.APIResponse{data=dto.FinalizeAmountsResponse} "Creator amounts finalized"
// @Failure 412 {object} dto.APIResponse "Campaign is archived or completed"
// @Router /api/v1/campaigns/{uuid}/amounts/finalize [post]
func (h *CampaignHandler) FinalizeCreatorAmounts(c fiber.Ctx) error {
	req := dto.FinalizeAmountsRequest{UUID: c.Params("uuid")}

	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	brandID, err := brandIDFromContext(c)
	if err != nil {
		return err
	}
	req.BrandID = brandID

	result, err := h.campaignFlow.FinalizeCreatorAmounts(requestContext(c, "/api/v1/campaigns/"+req.UUID+"/amounts/finalize"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Amount finalization", err)
	}

	return successResponse(c, fiber.StatusOK, "Creator amounts finalized", result)
}

// SubmitCreatorSelection handles the idempotent selection commit
// @Summary Submit Creator Selection
// @Description Commit the creator selection, closing the shortlist for good
// @Tags Campaigns
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Success 200 {object} dto.APIResponse{data=dto.SubmitSelectionResponse} "Creator selection committed"
// @Failure 412 {object} dto.APIResponse "Amounts not finalized"
// @Router /api/v1/campaigns/{uuid}/selection/submit [post]
func (h *CampaignHandler) SubmitCreatorSelection(c fiber.Ctx) error {
	req := dto.SubmitSelectionRequest{UUID: c.Params("uuid")}

	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	brandID, err := brandIDFromContext(c)
	if err != nil {
		return err
	}
	req.BrandID = brandID

	result, err := h.campaignFlow.SubmitCreatorSelection(requestContext(c, "/api/v1/campaigns/"+req.UUID+"/selection/submit"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Selection commit", err)
	}

	return successResponse(c, fiber.StatusOK, "Creator selection committed", result)
}

// PublishBrief handles brief publication and overwrites
// @Summary Publish Brief
// @Description Publish the creative brief to accepted creators; later calls overwrite the brief in place
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Param request body dto.PublishBriefRequest true "Brief content"
// @Success 200 {object} dto.APIResponse{data=dto.PublishBriefResponse} "Brief published"
// @Failure 400 {object} dto.APIResponse "Empty brief"
// @Failure 412 {object} dto.APIResponse "Selection not committed"
// @Router /api/v1/campaigns/{uuid}/brief [put]
func (h *CampaignHandler) PublishBrief(c fiber.Ctx) error {
	var req dto.PublishBriefRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = c.Params("uuid")

	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	brandID, err := brandIDFromContext(c)
	if err != nil {
		return err
	}
	req.BrandID = brandID

	result, err := h.campaignFlow.PublishBrief(requestContext(c, "/api/v1/campaigns/"+req.UUID+"/brief"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Brief publication", err)
	}

	return successResponse(c, fiber.StatusOK, "Brief published", result)
}

// CompleteCampaign handles the campaign completion
// @Summary Complete Campaign
// @Description Close out a campaign once no accepted creator can still go live
// @Tags Campaigns
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Success 200 {object} dto.APIResponse{data=dto.CompleteCampaignResponse} "Campaign completed"
// @Failure 412 {object} dto.APIResponse "Outstanding engagements remain"
// @Router /api/v1/campaigns/{uuid}/complete [post]
func (h *CampaignHandler) CompleteCampaign(c fiber.Ctx) error {
	req := dto.CompleteCampaignRequest{UUID: c.Params("uuid")}

	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	brandID, err := brandIDFromContext(c)
	if err != nil {
		return err
	}
	req.BrandID = brandID

	result, err := h.campaignFlow.CompleteCampaign(requestContext(c, "/api/v1/campaigns/"+req.UUID+"/complete"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Campaign completion", err)
	}

	return successResponse(c, fiber.StatusOK, "Campaign completed", result)
}

// ListCampaignEngagements handles engagement listing for one campaign
// @Summary List Campaign Engagements
// @Description List the engagements of one campaign for the owning brand
// @Tags Campaigns
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListEngagementsResponse} "Engagements retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Router /api/v1/campaigns/{uuid}/engagements [get]
func (h *CampaignHandler) ListCampaignEngagements(c fiber.Ctx) error {
	campaignUUID := c.Params("uuid")
	if campaignUUID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Campaign UUID is required", "MISSING_CAMPAIGN_UUID", nil)
	}

	brandID, err := brandIDFromContext(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	result, err := h.campaignFlow.ListCampaignEngagements(requestContext(c, "/api/v1/campaigns/"+campaignUUID+"/engagements"), campaignUUID, brandID, page, pageSize)
	if err != nil {
		return flowErrorResponse(c, "Engagement listing", err)
	}

	return successResponse(c, fiber.StatusOK, "Engagements retrieved successfully", result)
}
