package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/sefazor/ourphotos-albums/internal/models"
	"github.com/sefazor/ourphotos-albums/internal/service"
)

// statusFor maps a service error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrUpstream):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(models.ErrorResponse(err.Error()))
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(msg))
}

// callerFrom reads the identity AuthMiddleware stored on the request.
func callerFrom(c *fiber.Ctx) models.Caller {
	userID, _ := c.Locals("userID").(string)
	email, _ := c.Locals("userEmail").(string)
	return models.Caller{UserID: userID, Email: email}
}
