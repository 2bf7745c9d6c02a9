package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sidverse/gandaberunda/app/dto"
	businessflow "github.com/sidverse/gandaberunda/business_flow"
)

// NegotiationHandlerInterface defines the contract for negotiation handlers
type NegotiationHandlerInterface interface {
	SubmitBid(c fiber.Ctx) error
	RespondToBid(c fiber.Ctx) error
	AcceptDeal(c fiber.Ctx) error
	RejectDeal(c fiber.Ctx) error
}

// NegotiationHandler handles fee negotiation HTTP requests
type NegotiationHandler struct {
	negotiationFlow businessflow.NegotiationFlow
	validator       *validator.Validate
}

// NewNegotiationHandler creates a new negotiation handler
func NewNegotiationHandler(negotiationFlow businessflow.NegotiationFlow) *NegotiationHandler {
	return &NegotiationHandler{
		negotiationFlow: negotiationFlow,
		validator:       validator.New(),
	}
}

func creatorIDFromContext(c fiber.Ctx) (uint, error) {
	creatorID, ok := c.Locals("creator_id").(uint)
	if !ok {
		return 0, errorResponse(c, fiber.StatusUnauthorized, "Creator ID not found in context", "MISSING_CREATOR_ID", nil)
	}
	return creatorID, nil
}

// SubmitBid handles a creator submitting a bid
// @Summary Submit Bid
// @Description Submit or re-submit a bid on an engagement; a new bid supersedes any brand proposal
// @Tags Negotiation
// @Accept json
// @Produce json
// @Param uuid path string true "Engagement UUID"
// @Param request body dto.SubmitBidRequest true "Bid amount"
// @Success 200 {object} dto.APIResponse{data=dto.SubmitBidResponse} "Bid submitted successfully"
// @Failure 409 {object} dto.APIResponse "State changed since it was read"
// @Failure 412 {object} dto.APIResponse "Negotiation closed for bidding"
// @Router /api/v1/creator/engagements/{uuid}/bid [post]
func (h *NegotiationHandler) SubmitBid(c fiber.Ctx) error {
	var req dto.SubmitBidRequest
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

	result, err := h.negotiationFlow.SubmitBid(requestContext(c, "/api/v1/engagements/"+req.UUID+"/bid"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Bid submission", err)
	}

	return successResponse(c, fiber.StatusOK, "Bid submitted successfully", result)
}

// RespondToBid handles the brand's verdict on a pending bid
// @Summary Respond To Bid
// @Description Accept, counter or reject a creator's pending bid
// @Tags Negotiation
// @Accept json
// @Produce json
// @Param uuid path string true "Engagement UUID"
// @Param request body dto.RespondToBidRequest true "Verdict and optional counter amount"
// @Success 200 {object} dto.APIResponse{data=dto.RespondToBidResponse} "Bid response recorded"
// @Failure 409 {object} dto.APIResponse "State changed since it was read"
// @Failure 412 {object} dto.APIResponse "No bid pending"
// @Router /api/v1/engagements/{uuid}/bid/respond [post]
func (h *NegotiationHandler) RespondToBid(c fiber.Ctx) error {
	var req dto.RespondToBidRequest
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

	result, err := h.negotiationFlow.RespondToBid(requestContext(c, "/api/v1/engagements/"+req.UUID+"/bid/respond"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Bid response", err)
	}

	return successResponse(c, fiber.StatusOK, "Bid response recorded", result)
}

// AcceptDeal handles the creator accepting the brand's proposed amount
// @Summary Accept Deal
// @Description Lock in the amount the brand proposed
// @Tags Negotiation
// @Produce json
// @Param uuid path string true "Engagement UUID"
// @Success 200 {object} dto.APIResponse{data=dto.AcceptDealResponse} "Deal accepted"
// @Failure 412 {object} dto.APIResponse "No amount on the table"
// @Router /api/v1/creator/engagements/{uuid}/deal/accept [post]
func (h *NegotiationHandler) AcceptDeal(c fiber.Ctx) error {
	req := dto.AcceptDealRequest{UUID: c.Params("uuid")}

	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	creatorID, err := creatorIDFromContext(c)
	if err != nil {
		return err
	}
	req.CreatorID = creatorID

	result, err := h.negotiationFlow.AcceptDeal(requestContext(c, "/api/v1/engagements/"+req.UUID+"/deal/accept"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Deal acceptance", err)
	}

	return successResponse(c, fiber.StatusOK, "Deal accepted", result)
}

// RejectDeal handles the creator walking away from the negotiation
// @Summary Reject Deal
// @Description End the negotiation from the creator side; terminal
// @Tags Negotiation
// @Produce json
// @Param uuid path string true "Engagement UUID"
// @Success 200 {object} dto.APIResponse{data=dto.RejectDealResponse} "Deal rejected"
// @Failure 412 {object} dto.APIResponse "Engagement already terminal"
// @Router /api/v1/creator/engagements/{uuid}/deal/reject [post]
func (h *NegotiationHandler) RejectDeal(c fiber.Ctx) error {
	req := dto.RejectDealRequest{UUID: c.Params("uuid")}

	if err := h.validator.Struct(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	creatorID, err := creatorIDFromContext(c)
	if err != nil {
		return err
	}
	req.CreatorID = creatorID

	result, err := h.negotiationFlow.RejectDeal(requestContext(c, "/api/v1/engagements/"+req.UUID+"/deal/reject"), &req, clientMetadata(c))
	if err != nil {
		return flowErrorResponse(c, "Deal rejection", err)
	}

	return successResponse(c, fiber.StatusOK, "Deal rejected", result)
}
