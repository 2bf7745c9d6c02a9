package handlers

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	businessflow "github.com/sidverse/gandaberunda/business_flow"
)

// EngagementHandlerInterface defines the contract for creator-side engagement handlers
type EngagementHandlerInterface interface {
	ListMyEngagements(c fiber.Ctx) error
}

// EngagementHandler handles creator-facing engagement HTTP requests
type EngagementHandler struct {
	campaignFlow businessflow.CampaignFlow
	validator    *validator.Validate
}

// NewEngagementHandler creates a new engagement handler
func NewEngagementHandler(campaignFlow businessflow.CampaignFlow) *EngagementHandler {
	return &EngagementHandler{
		campaignFlow: campaignFlow,
		validator:    validator.New(),
	}
}

// ListMyEngagements handles the creator listing their own engagements
// @Summary List My Engagements
// @Description List the authenticated creator's engagements across campaigns
// @Tags Engagements
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListEngagementsResponse} "Engagements retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/creator/engagements [get]
func (h *EngagementHandler) ListMyEngagements(c fiber.Ctx) error {
	creatorID, err := creatorIDFromContext(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	result, err := h.campaignFlow.ListCreatorEngagements(requestContext(c, "/api/v1/engagements"), creatorID, page, pageSize)
	if err != nil {
		return flowErrorResponse(c, "Engagement listing", err)
	}

	return successResponse(c, fiber.StatusOK, "Engagements retrieved successfully", result)
}
