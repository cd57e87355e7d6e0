package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sefazor/ourphotos-albums/internal/config"
	"github.com/sefazor/ourphotos-albums/internal/handler"
	"github.com/sefazor/ourphotos-albums/internal/middleware"
	"github.com/sefazor/ourphotos-albums/internal/models"
	"github.com/sefazor/ourphotos-albums/internal/service"
	"github.com/sefazor/ourphotos-albums/pkg/jwt"
)

// 10 files of up to 11 MiB plus form overhead.
const bodyLimit = 10*service.DefaultMaxFileSize + 4<<20

type Handlers struct {
	Album *handler.AlbumHandler
	Image *handler.ImageHandler
	Auth  *handler.AuthHandler
}

func New(cfg *config.Config, h Handlers, tokens *jwt.Manager, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "ourphotos-albums",
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler(log),
	})

	// Global Middleware'ler önce tanımlanmalı
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE",
		AllowCredentials: cfg.CORSAllowOrigins != "*",
	}))
	app.Use(logger.New())
	app.Use(middleware.Metrics())
	if cfg.EnablePprof {
		app.Use(pprof.New())
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("working")
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")
	auth := middleware.AuthMiddleware(tokens, log)

	// Public routes
	api.Get("/album/details/:albumId", h.Album.GetAlbumDetails)
	api.Get("/album/details/:albumId/qrcode", h.Album.GetAlbumQRCode)
	api.Get("/auth/google/oauth", h.Auth.GoogleOAuth)
	api.Get("/auth/google/oauth/callback", h.Auth.GoogleOAuthCallback)

	// Protected routes
	api.Get("/auth/fetch/users", auth, h.Auth.FetchUsers)

	album := api.Group("/album", auth)
	album.Post("/", h.Album.CreateAlbum)
	album.Get("/owner", h.Album.GetOwnedAlbums)
	album.Get("/shared", h.Album.GetSharedAlbums)
	album.Post("/:albumId", h.Album.UpdateOrShareAlbum)
	album.Delete("/:albumId", h.Album.DeleteAlbum)

	image := api.Group("/image", auth)
	image.Post("/imgs", h.Image.UploadImages)
	image.Post("/isFavoriteIMG", h.Image.SetFavorite)
	image.Post("/markFavorite/:id", h.Image.MarkFavorite)
	image.Post("/markUnFavorite/:id", h.Image.MarkUnFavorite)
	image.Post("/comment/add", h.Image.AddComment)
	image.Post("/comment/remove", h.Image.RemoveComment)
	image.Delete("/delete/:imageId", h.Image.DeleteImage)
	image.Get("/:albumId", h.Image.GetAlbumImages)
	image.Get("/:albumId/favorite", h.Image.GetFavoriteImages)
	image.Get("/:albumId/tags", h.Image.GetImagesByTag)

	return app
}

// errorHandler answers errors that escape handlers (unknown routes, body
// limit, recovered panics) with the usual envelope.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		} else {
			log.Error("unhandled error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(models.ErrorResponse(msg))
	}
}
