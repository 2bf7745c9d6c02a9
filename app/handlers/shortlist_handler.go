package handlers

import (
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sidverse/gandaberunda/app/dto"
	businessflow "github.com/sidverse/gandaberunda/business_flow"
)

// ShortlistHandlerInterface defines the contract for shortlist handlers
type ShortlistHandlerInterface interface {
	UploadShortlist(c fiber.Ctx) error
	UploadShortlistFile(c fiber.Ctx) error
}

// ShortlistHandler handles admin shortlist HTTP requests
type ShortlistHandler struct {
	shortlistFlow businessflow.ShortlistFlow
	validator     *validator.Validate
}

// NewShortlistHandler creates a new shortlist handler
func NewShortlistHandler(shortlistFlow businessflow.ShortlistFlow) *ShortlistHandler {
	return &ShortlistHandler{
		shortlistFlow: shortlistFlow,
		validator:     validator.New(),
	}
}

func adminIDFromContext(c fiber.Ctx) (uint, error) {
	adminID, ok := c.Locals("admin_id").(uint)
	if !ok {
		return 0, errorResponse(c, fiber.StatusUnauthorized, "Admin ID not found in context", "MISSING_ADMIN_ID", nil)
	}
	return adminID, nil
}

// UploadShortlist handles a JSON shortlist upload
// @Summary Upload Shortlist
// @Description Propose creators for a campaign; duplicates and unknown creators are counted, not fatal
// @Tags Shortlist
// @Accept json
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Param request body dto.UploadShortlistRequest true "Shortlist entries"
// @Success 200 {object} dto.APIResponse{data=dto.UploadShortlistResponse} "Shortlist uploaded"
// @Failure 400 {object} dto.APIResponse "Batch too large or invalid entries"
// @Failure 412 {object} dto.APIResponse "Selection already committed"
// @Router /api/v1/admin/campaigns/{uuid}/shortlist [post]
func (h *ShortlistHandler) UploadShortlist(c fiber.Ctx) error {
	var req dto.UploadShortlistRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = c.Params("uuid")

	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	adminID, err := adminIDFromContext(c)
	if err != nil {
		return err
	}
	req.AdminID = adminID

	result, err := h.shortlistFlow.UploadShortlist(requestContext(c, "/api/v1/admin/campaigns/"+req.UUID+"/shortlist"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Shortlist upload", err)
	}

	return successResponse(c, fiber.StatusOK, "Shortlist uploaded", result)
}

// UploadShortlistFile handles a spreadsheet shortlist upload
// @Summary Upload Shortlist Spreadsheet
// @Description Propose creators for a campaign from an XLSX file with a creator_id column
// @Tags Shortlist
// @Accept multipart/form-data
// @Produce json
// @Param uuid path string true "Campaign UUID"
// @Param file formData file true "XLSX file"
// @Success 200 {object} dto.APIResponse{data=dto.UploadShortlistResponse} "Shortlist uploaded"
// @Failure 400 {object} dto.APIResponse "Unreadable spreadsheet"
// @Failure 412 {object} dto.APIResponse "Selection already committed"
// @Router /api/v1/admin/campaigns/{uuid}/shortlist/file [post]
func (h *ShortlistHandler) UploadShortlistFile(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Shortlist file is required", "MISSING_SHORTLIST_FILE", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Failed to open uploaded file", "INVALID_SHORTLIST_FILE", nil)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Failed to read uploaded file", "INVALID_SHORTLIST_FILE", nil)
	}

	entries, err := businessflow.ParseShortlistXLSX(data)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Failed to parse spreadsheet", "INVALID_SHORTLIST_FILE", err.Error())
	}

	req := dto.UploadShortlistRequest{
		UUID:    c.Params("uuid"),
		Entries: entries,
	}

	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	adminID, err := adminIDFromContext(c)
	if err != nil {
		return err
	}
	req.AdminID = adminID

	result, err := h.shortlistFlow.UploadShortlist(requestContext(c, "/api/v1/admin/campaigns/"+req.UUID+"/shortlist/file"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Shortlist upload", err)
	}

	return successResponse(c, fiber.StatusOK, "Shortlist uploaded", result)
}
