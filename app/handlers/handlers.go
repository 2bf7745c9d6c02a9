// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sidverse/gandaberunda/app/dto"
	"github.com/sidverse/gandaberunda/app/middleware"
	businessflow "github.com/sidverse/gandaberunda/business_flow"
	"github.com/sidverse/gandaberunda/utils"
)

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "uuid4":
		return err.Field() + " must be a valid UUID"
	case "uri":
		return err.Field() + " must be a valid URI"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

func errorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func successResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func validationErrorResponse(c fiber.Ctx, err error) error {
	var validationErrors []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			validationErrors = append(validationErrors, getValidationErrorMessage(verr))
		}
	}
	return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
}

// statusForKind maps a flow error kind to the HTTP status it surfaces as
func statusForKind(kind string) int {
	switch kind {
	case businessflow.KindPreconditionFailed:
		return fiber.StatusPreconditionFailed
	case businessflow.KindStaleState:
		return fiber.StatusConflict
	case businessflow.KindNotFound:
		return fiber.StatusNotFound
	case businessflow.KindForbidden:
		return fiber.StatusForbidden
	case businessflow.KindValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// flowErrorResponse translates a business flow error into an API response.
// Internal errors are logged but never leaked to the client.
func flowErrorResponse(c fiber.Ctx, operation string, err error) error {
	kind := businessflow.KindOf(err)
	code := businessflow.CodeOf(err)
	status := statusForKind(kind)

	if kind == businessflow.KindStaleState {
		middleware.RecordStaleState(operation)
	}

	message := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Println(operation, "failed:", err)
		message = operation + " failed"
	}

	return errorResponse(c, status, message, code, nil)
}

// requestContext creates a context with request-scoped values for
// observability and timeout
func requestContext(c fiber.Ctx, endpoint string) context.Context {
	return requestContextWithTimeout(c, endpoint, 30*time.Second)
}

func requestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel) // Store cancel function for cleanup

	return ctx
}

// clientMetadata assembles the audit metadata for a request
func clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if requestID := c.Get("X-Request-ID"); requestID != "" {
		metadata.SetRequestID(requestID)
	}
	return metadata
}
