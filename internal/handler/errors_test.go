package handler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/sefazor/ourphotos-albums/internal/service"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrValidation, fiber.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", service.ErrForbidden), fiber.StatusForbidden},
		{service.ErrNotFound, fiber.StatusNotFound},
		{service.ErrConflict, fiber.StatusConflict},
		{service.ErrUpstream, fiber.StatusBadGateway},
		{service.ErrPersistence, fiber.StatusInternalServerError},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
