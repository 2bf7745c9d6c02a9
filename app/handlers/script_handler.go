package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sidverse/gandaberunda/app/dto"
	businessflow "github.com/sidverse/gandaberunda/business_flow"
)

// ScriptHandlerInterface defines the contract for script handlers
type ScriptHandlerInterface interface {
	SubmitScript(c fiber.Ctx) error
	ReviewScript(c fiber.Ctx) error
	BatchReviewScripts(c fiber.Ctx) error
}

// ScriptHandler handles script submission and review HTTP requests
type ScriptHandler struct {
	scriptFlow businessflow.ScriptFlow
	validator  *validator.Validate
}

// NewScriptHandler creates a new script handler
func NewScriptHandler(scriptFlow businessflow.ScriptFlow) *ScriptHandler {
	return &ScriptHandler{
		scriptFlow: scriptFlow,
		validator:  validator.New(),
	}
}

// SubmitScript handles a creator submitting a script draft
// @Summary Submit Script
// @Description Submit a script for review; requires a published brief and a finalized amount
// @Tags Scripts
// @Accept json
// @Produce json
// @Param uuid path string true "Engagement UUID"
// @Param request body dto.SubmitScriptRequest true "Script content"
// @Success 200 {object} dto.APIResponse{data=dto.SubmitScriptResponse} "Script submitted for review"
// @Failure 412 {object} dto.APIResponse "Brief not published or deal not finalized"
// @Router /api/v1/creator/engagements/{uuid}/script [post]
func (h *ScriptHandler) SubmitScript(c fiber.Ctx) error {
	var req dto.SubmitScriptRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = c.Params("uuid")

	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	creatorID, err := creatorIDFromContext(c)
	if err != nil {
		return err
	}
	req.CreatorID = creatorID

	result, err := h.scriptFlow.SubmitScript(requestContext(c, "/api/v1/engagements/"+req.UUID+"/script"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Script submission", err)
	}

	return successResponse(c, fiber.StatusOK, "Script submitted for review", result)
}

// ReviewScript handles the brand's verdict on one pending script
// @Summary Review Script
// @Description Approve, reject or request a revision of a pending script; reviewing nothing pending is a no-op
// @Tags Scripts
// @Accept json
// @Produce json
// @Param uuid path string true "Engagement UUID"
// @Param request body dto.ReviewRequest true "Verdict and feedback"
// @Success 200 {object} dto.APIResponse{data=dto.ReviewResponse} "Script review recorded"
// @Failure 400 {object} dto.APIResponse "Feedback required for negative verdicts"
// @Router /api/v1/engagements/{uuid}/script/review [post]
func (h *ScriptHandler) ReviewScript(c fiber.Ctx) error {
	var req dto.ReviewRequest
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

	result, err := h.scriptFlow.ReviewScript(requestContext(c, "/api/v1/engagements/"+req.UUID+"/script/review"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Script review", err)
	}

	return successResponse(c, fiber.StatusOK, "Script review recorded", result)
}

// BatchReviewScripts handles per-creator script verdicts for one campaign
// @Summary Batch Review Scripts
// @Description Apply script verdicts for many creators of one campaign in a single call
// @Tags Scripts
// @Accept json
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Param request body dto.BatchReviewRequest true "Per-creator verdicts"
// @Success 200 {object} dto.APIResponse{data=dto.BatchReviewResponse} "Script batch review completed"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/campaigns/{uuid}/scripts/review [post]
func (h *ScriptHandler) BatchReviewScripts(c fiber.Ctx) error {
	var req dto.BatchReviewRequest
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

	result, err := h.scriptFlow.BatchReviewScripts(requestContext(c, "/api/v1/campaigns/"+req.UUID+"/scripts/review"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Script batch review", err)
	}

	return successResponse(c, fiber.StatusOK, "Script batch review completed", result)
}
