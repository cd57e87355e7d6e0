package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/sefazor/ourphotos-albums/internal/models"
	"github.com/sefazor/ourphotos-albums/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// GoogleOAuth sends the browser to Google's consent screen.
func (h *AuthHandler) GoogleOAuth(c *fiber.Ctx) error {
	redirectURL, err := h.authService.BeginLogin(c.UserContext())
	if err != nil {
		return c.Redirect(h.authService.LoginFailureURL(err), fiber.StatusTemporaryRedirect)
	}

	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

// GoogleOAuthCallback always answers with a redirect to the frontend, carrying
// either the token or the failure message.
func (h *AuthHandler) GoogleOAuthCallback(c *fiber.Ctx) error {
	var q models.OAuthCallbackQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Redirect(h.authService.LoginFailureURL(errors.New("invalid callback query")), fiber.StatusTemporaryRedirect)
	}

	// kullanıcı izni reddetti
	if q.Error != "" {
		return c.Redirect(h.authService.LoginFailureURL(errors.New(q.Error)), fiber.StatusTemporaryRedirect)
	}

	result, err := h.authService.CompleteLogin(c.UserContext(), q.Code, q.State)
	if err != nil {
		return c.Redirect(h.authService.LoginFailureURL(err), fiber.StatusTemporaryRedirect)
	}

	return c.Redirect(result.RedirectURL, fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) FetchUsers(c *fiber.Ctx) error {
	peers, err := h.authService.ListPeers(c.UserContext(), callerFrom(c).Email)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(models.SuccessResponse(peers, "Users retrieved successfully"))
}
