package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sefazor/ourphotos-albums/internal/models"
	"github.com/sefazor/ourphotos-albums/internal/service"
	"github.com/sefazor/ourphotos-albums/pkg/utils"
)

type ImageHandler struct {
	imageService *service.ImageService
	validator    *utils.Validator
}

func NewImageHandler(imageService *service.ImageService, validator *utils.Validator) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		validator:    validator,
	}
}

// UploadImages accepts multipart form field "images" plus albumId, name,
// tags (JSON array) and person.
func (h *ImageHandler) UploadImages(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "Invalid multipart form")
	}

	var req models.UploadImagesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	resp, err := h.imageService.Upload(c.UserContext(), callerFrom(c), req, form.File["images"])
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(resp, "Images uploaded successfully"))
}

// SetFavorite handles /isFavoriteIMG?imageId= with body {isFavorite}.
func (h *ImageHandler) SetFavorite(c *fiber.Ctx) error {
	imageID := c.Query("imageId")
	if imageID == "" {
		return badRequest(c, "imageId is required")
	}

	var req models.FavoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	img, err := h.imageService.SetFavoriteByImageID(c.UserContext(), callerFrom(c), imageID, *req.IsFavorite)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(models.SuccessResponse(img, "Favorite updated successfully"))
}

func (h *ImageHandler) MarkFavorite(c *fiber.Ctx) error {
	return h.markFavorite(c, true)
}

func (h *ImageHandler) MarkUnFavorite(c *fiber.Ctx) error {
	return h.markFavorite(c, false)
}

func (h *ImageHandler) markFavorite(c *fiber.Ctx, favorite bool) error {
	img, err := h.imageService.SetFavoriteByID(c.UserContext(), callerFrom(c), c.Params("id"), favorite)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(models.SuccessResponse(img, "Favorite updated successfully"))
}

func (h *ImageHandler) AddComment(c *fiber.Ctx) error {
	var req models.AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	img, err := h.imageService.AddComment(c.UserContext(), callerFrom(c), req)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(models.SuccessResponse(img, "Comment added successfully"))
}

func (h *ImageHandler) RemoveComment(c *fiber.Ctx) error {
	var req models.RemoveCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	img, err := h.imageService.RemoveComment(c.UserContext(), callerFrom(c), req)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(models.SuccessResponse(img, "Comment removed successfully"))
}

func (h *ImageHandler) DeleteImage(c *fiber.Ctx) error {
	if err := h.imageService.Delete(c.UserContext(), callerFrom(c), c.Params("imageId")); err != nil {
		return fail(c, err)
	}

	return c.JSON(models.SuccessResponse(nil, "Image deleted successfully"))
}

func (h *ImageHandler) GetAlbumImages(c *fiber.Ctx) error {
	list, err := h.imageService.ListByAlbum(c.UserContext(), c.Params("albumId"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(models.SuccessResponse(list, "Images retrieved successfully"))
}

func (h *ImageHandler) GetFavoriteImages(c *fiber.Ctx) error {
	images, err := h.imageService.ListFavorites(c.UserContext(), c.Params("albumId"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(models.SuccessResponse(images, "Favorite images retrieved successfully"))
}

func (h *ImageHandler) GetImagesByTag(c *fiber.Ctx) error {
	images, err := h.imageService.ListByTag(c.UserContext(), c.Params("albumId"), c.Query("tagName"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(models.SuccessResponse(images, "Images retrieved successfully"))
}
