// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/sidverse/gandaberunda/app/dto"
	"github.com/sidverse/gandaberunda/app/services"
)

// AuthMiddleware handles JWT token validation for protected endpoints. Each
// actor lane (brand, creator, admin) gets its own middleware so a creator
// token can never reach a brand route.
type AuthMiddleware struct {
	tokenService services.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// extractBearerToken pulls the token out of the Authorization header,
// returning a ready-to-send error response when the header is malformed
func extractBearerToken(c fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
			Success: false,
			Message: "Authorization header is required",
			Error:   dto.ErrorDetail{Code: "MISSING_AUTHORIZATION_HEADER"},
		})
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
			Success: false,
			Message: "Invalid authorization header format. Expected 'Bearer <token>'",
			Error:   dto.ErrorDetail{Code: "INVALID_AUTHORIZATION_FORMAT"},
		})
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
			Success: false,
			Message: "Access token is required",
			Error:   dto.ErrorDetail{Code: "MISSING_ACCESS_TOKEN"},
		})
	}

	return token, nil
}

func tokenErrorResponse(c fiber.Ctx, err error) error {
	var code, msg string
	if errors.Is(err, services.ErrTokenExpired) {
		code = "TOKEN_EXPIRED"
		msg = "Access token has expired"
	} else if errors.Is(err, services.ErrTokenWrongAudience) {
		code = "TOKEN_WRONG_AUDIENCE"
		msg = "Access token is not valid for this endpoint"
	} else if errors.Is(err, services.ErrTokenInvalid) {
		code = "TOKEN_INVALID"
		msg = "Invalid access token"
	} else {
		code = "TOKEN_VALIDATION_FAILED"
		msg = "Token validation failed"
	}

	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: msg,
		Error:   dto.ErrorDetail{Code: code},
	})
}

func (m *AuthMiddleware) authenticate(expectedKind string, localKey string) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, err := extractBearerToken(c)
		if err != nil {
			return err
		}

		claims, err := m.tokenService.ValidateToken(token, expectedKind)
		if err != nil {
			return tokenErrorResponse(c, err)
		}

		c.Locals(localKey, claims.ActorID)
		c.Locals("role", claims.Role)
		c.Locals("token_id", claims.TokenID)
		c.Locals("token_claims", claims)

		// Store RequestID for audit logging
		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

// BrandAuthenticate validates JWT tokens issued to brand users
func (m *AuthMiddleware) BrandAuthenticate() fiber.Handler {
	return m.authenticate(services.ActorKindBrand, "brand_id")
}

// CreatorAuthenticate validates JWT tokens issued to creators
func (m *AuthMiddleware) CreatorAuthenticate() fiber.Handler {
	return m.authenticate(services.ActorKindCreator, "creator_id")
}

// AdminAuthenticate validates JWT tokens issued to platform admins
func (m *AuthMiddleware) AdminAuthenticate() fiber.Handler {
	return m.authenticate(services.ActorKindAdmin, "admin_id")
}

// GetBrandIDFromContext extracts the brand ID from the request context
func GetBrandIDFromContext(c fiber.Ctx) (uint, bool) {
	brandID, ok := c.Locals("brand_id").(uint)
	return brandID, ok
}

// GetCreatorIDFromContext extracts the creator ID from the request context
func GetCreatorIDFromContext(c fiber.Ctx) (uint, bool) {
	creatorID, ok := c.Locals("creator_id").(uint)
	return creatorID, ok
}

// GetAdminIDFromContext extracts the admin ID from the request context
func GetAdminIDFromContext(c fiber.Ctx) (uint, bool) {
	adminID, ok := c.Locals("admin_id").(uint)
	return adminID, ok
}

// GetTokenClaimsFromContext extracts token claims from the request context
func GetTokenClaimsFromContext(c fiber.Ctx) (*services.ActorClaims, bool) {
	claims, ok := c.Locals("token_claims").(*services.ActorClaims)
	return claims, ok
}
