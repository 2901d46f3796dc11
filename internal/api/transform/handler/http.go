package transformHandler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	transformService "BiasLens/internal/api/transform/service"
	"BiasLens/internal/middleware"
)

type TransformHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	transformService transformService.ITransformService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	ts transformService.ITransformService,
) *TransformHandler {
	return &TransformHandler{
		log:              log,
		validator:        validate,
		middleware:       middleware,
		transformService: ts,
	}
}

func (h *TransformHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	srv.Get("/transform/options", h.GetOptions)

	srv.Post("/runs", h.middleware.NewRateLimiter, h.StartRun)

	runs := srv.Group("/runs")
	runs.Get("/:id", h.GetRun)
	runs.Get("/:id/ws", wsMiddleware, websocket.New(h.streamRun))

	srv.Get("/image-sets/:id/result", h.GetResult)
}
