package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sidverse/gandaberunda/app/dto"
	businessflow "github.com/sidverse/gandaberunda/business_flow"
)

// ContentHandlerInterface defines the contract for content handlers
type ContentHandlerInterface interface {
	UploadContent(c fiber.Ctx) error
	ReviewContent(c fiber.Ctx) error
	BatchReviewContents(c fiber.Ctx) error
	GoLive(c fiber.Ctx) error
}

// ContentHandler handles content upload, review and go-live HTTP requests
type ContentHandler struct {
	contentFlow businessflow.ContentFlow
	validator   *validator.Validate
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentFlow businessflow.ContentFlow) *ContentHandler {
	return &ContentHandler{
		contentFlow: contentFlow,
		validator:   validator.New(),
	}
}

// UploadContent handles a creator submitting produced content
// @Summary Upload Content
// @Description Submit produced content for review; requires an approved script
// @Tags Content
// @Accept json
// @Produce json
// @Param uuid path string true "Engagement UUID"
// @Param request body dto.UploadContentRequest true "Content URI"
// @Success 200 {object} dto.APIResponse{data=dto.UploadContentResponse} "Content submitted for review"
// @Failure 412 {object} dto.APIResponse "Script not approved"
// @Router /api/v1/creator/engagements/{uuid}/content [post]
func (h *ContentHandler) UploadContent(c fiber.Ctx) error {
	var req dto.UploadContentRequest
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

	result, err := h.contentFlow.UploadContent(requestContext(c, "/api/v1/engagements/"+req.UUID+"/content"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Content upload", err)
	}

	return successResponse(c, fiber.StatusOK, "Content submitted for review", result)
}

// ReviewContent handles the brand's verdict on pending content
// @Summary Review Content
// @Description Approve, reject or request a revision of pending content; reviewing nothing pending is a no-op
// @Tags Content
// @Accept json
// @Produce json
// @Param uuid path string true "Engagement UUID"
// @Param request body dto.ReviewRequest true "Verdict and feedback"
// @Success 200 {object} dto.APIResponse{data=dto.ReviewResponse} "Content review recorded"
// @Failure 400 {object} dto.APIResponse "Feedback required for negative verdicts"
// @Router /api/v1/engagements/{uuid}/content/review [post]
func (h *ContentHandler) ReviewContent(c fiber.Ctx) error {
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

	result, err := h.contentFlow.ReviewContent(requestContext(c, "/api/v1/engagements/"+req.UUID+"/content/review"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Content review", err)
	}

	return successResponse(c, fiber.StatusOK, "Content review recorded", result)
}

// BatchReviewContents handles per-creator content verdicts for one campaign
// @Summary Batch Review Contents
// @Description Apply content verdicts for many creators of one campaign in a single call
// @Tags Content
// @Accept json
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Param request body dto.BatchReviewRequest true "Per-creator verdicts"
// @Success 200 {object} dto.APIResponse{data=dto.BatchReviewResponse} "Content batch review completed"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/campaigns/{uuid}/contents/review [post]
func (h *ContentHandler) BatchReviewContents(c fiber.Ctx) error {
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

	result, err := h.contentFlow.BatchReviewContents(requestContext(c, "/api/v1/campaigns/"+req.UUID+"/contents/review"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Content batch review", err)
	}

	return successResponse(c, fiber.StatusOK, "Content batch review completed", result)
}

// GoLive handles the creator publishing approved content
// @Summary Go Live
// @Description Publish approved content; moves the engagement into its final state
// @Tags Content
// @Accept json
// @Produce json
// @Param uuid path string true "Engagement UUID"
// @Param request body dto.GoLiveRequest true "Live URI"
// @Success 200 {object} dto.APIResponse{data=dto.GoLiveResponse} "Content is live"
// @Failure 412 {object} dto.APIResponse "Content not approved"
// @Router /api/v1/creator/engagements/{uuid}/go-live [post]
func (h *ContentHandler) GoLive(c fiber.Ctx) error {
	var req dto.GoLiveRequest
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

	result, err := h.contentFlow.GoLive(requestContext(c, "/api/v1/engagements/"+req.UUID+"/go-live"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Go-live", err)
	}

	return successResponse(c, fiber.StatusOK, "Content is live", result)
}
