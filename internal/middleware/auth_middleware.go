package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sefazor/ourphotos-albums/internal/models"
	jwtPkg "github.com/sefazor/ourphotos-albums/pkg/jwt"
)

// AuthMiddleware verifies the Authorization header and stores the caller in
// c.Locals("userID") and c.Locals("userEmail").
func AuthMiddleware(tokens *jwtPkg.Manager, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := tokens.Verify(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			status := tokenErrorStatus(err)
			if status == fiber.StatusInternalServerError {
				log.Error("token verification misconfigured", zap.Error(err))
			}
			return c.Status(status).JSON(models.ErrorResponse(err.Error()))
		}

		c.Locals("userID", claims.UserID)
		c.Locals("userEmail", claims.Email)

		return c.Next()
	}
}

func tokenErrorStatus(err error) int {
	switch {
	case errors.Is(err, jwtPkg.ErrMissingCredential):
		return fiber.StatusBadRequest
	case errors.Is(err, jwtPkg.ErrServerMisconfigured):
		return fiber.StatusInternalServerError
	default:
		// invalid payload, bad signature, expired
		return fiber.StatusUnauthorized
	}
}
