package middleware

import (
	"strings"

	"clinic-assistant/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	LocalPatientID = "patientID"
	LocalEmail     = "email"
)

func AuthMiddleware(jwtManager *auth.JWTManager, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			logger.Warn("Missing authorization token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization token required",
			})
		}

		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			logger.Warn("Invalid token", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		storeClaims(c, claims)
		return c.Next()
	}
}

// OptionalAuth attaches the patient when a valid bearer token is present and
// otherwise lets the request through as a guest.
func OptionalAuth(jwtManager *auth.JWTManager, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Next()
		}

		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			logger.Debug("Ignoring invalid token, continuing as guest", zap.Error(err))
			return c.Next()
		}

		storeClaims(c, claims)
		return c.Next()
	}
}

// PatientID returns the authenticated patient, or nil for guests.
func PatientID(c *fiber.Ctx) *int64 {
	id, ok := c.Locals(LocalPatientID).(int64)
	if !ok || id <= 0 {
		return nil
	}
	return &id
}

func bearerToken(c *fiber.Ctx) string {
	token := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	return strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
}

func storeClaims(c *fiber.Ctx, claims *auth.Claims) {
	c.Locals(LocalPatientID, claims.PatientID)
	c.Locals(LocalEmail, claims.Email)
}
