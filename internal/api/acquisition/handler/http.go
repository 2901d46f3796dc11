package acquisitionHandler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	acquisitionService "BiasLens/internal/api/acquisition/service"
	"BiasLens/internal/middleware"
)

type AcquisitionHandler struct {
	log                *logrus.Logger
	validator          *validator.Validate
	middleware         middleware.Middleware
	acquisitionService acquisitionService.IAcquisitionService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	acquisitionService acquisitionService.IAcquisitionService,
) *AcquisitionHandler {
	return &AcquisitionHandler{
		log:                log,
		validator:          validate,
		middleware:         middleware,
		acquisitionService: acquisitionService,
	}
}

func (h *AcquisitionHandler) Start(srv fiber.Router) {
	images := srv.Group("/images")

	images.Post("/random", h.middleware.NewRateLimiter, h.RandomImages)
	images.Post("/upload", h.middleware.NewRateLimiter, h.UploadImages)
	images.Get("/:id", h.GetImageSet)
	images.Post("/:id/refresh", h.middleware.NewRateLimiter, h.RefreshImage)
	images.Delete("/:id/images/:name", h.RemoveImage)
}
