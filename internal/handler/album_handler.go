package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sefazor/ourphotos-albums/internal/models"
	"github.com/sefazor/ourphotos-albums/internal/service"
	"github.com/sefazor/ourphotos-albums/pkg/qrcode"
	"github.com/sefazor/ourphotos-albums/pkg/utils"
)

type AlbumHandler struct {
	albumService *service.AlbumService
	validator    *utils.Validator
}

func NewAlbumHandler(albumService *service.AlbumService, validator *utils.Validator) *AlbumHandler {
	return &AlbumHandler{
		albumService: albumService,
		validator:    validator,
	}
}

func (h *AlbumHandler) CreateAlbum(c *fiber.Ctx) error {
	var req models.CreateAlbumRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	album, err := h.albumService.Create(c.UserContext(), callerFrom(c), req)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(album, "Album created successfully"))
}

func (h *AlbumHandler) UpdateOrShareAlbum(c *fiber.Ctx) error {
	var req models.UpdateAlbumRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	album, err := h.albumService.UpdateOrShare(c.UserContext(), callerFrom(c), c.Params("albumId"), req)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(models.SuccessResponse(album, "Album updated successfully"))
}

func (h *AlbumHandler) DeleteAlbum(c *fiber.Ctx) error {
	if err := h.albumService.Delete(c.UserContext(), callerFrom(c), c.Params("albumId")); err != nil {
		return fail(c, err)
	}

	return c.JSON(models.SuccessResponse(nil, "Album and its images deleted successfully"))
}

func (h *AlbumHandler) GetOwnedAlbums(c *fiber.Ctx) error {
	albums, err := h.albumService.ListOwned(c.UserContext(), callerFrom(c))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(models.SuccessResponse(albums, "Albums retrieved successfully"))
}

func (h *AlbumHandler) GetSharedAlbums(c *fiber.Ctx) error {
	albums, err := h.albumService.ListShared(c.UserContext(), callerFrom(c))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(models.SuccessResponse(albums, "Shared albums retrieved successfully"))
}

// Public, no token required.
func (h *AlbumHandler) GetAlbumDetails(c *fiber.Ctx) error {
	album, err := h.albumService.GetDetails(c.UserContext(), c.Params("albumId"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(models.SuccessResponse(album, "Album retrieved successfully"))
}

// GetAlbumQRCode returns a PNG linking to the album's page on the frontend.
func (h *AlbumHandler) GetAlbumQRCode(c *fiber.Ctx) error {
	size := c.QueryInt("size", qrcode.DefaultSize)
	if size < 64 || size > 1024 {
		return badRequest(c, "size must be between 64 and 1024")
	}

	qr, err := h.albumService.DetailsQRCode(c.UserContext(), c.Params("albumId"), size)
	if err != nil {
		return fail(c, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set("X-Album-URL", qr.URL)
	return c.Send(qr.PNG)
}
