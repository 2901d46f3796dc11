package analysisHandler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	analysisService "BiasLens/internal/api/analysis/service"
	"BiasLens/internal/middleware"
)

type AnalysisHandler struct {
	log             *logrus.Logger
	validator       *validator.Validate
	middleware      middleware.Middleware
	analysisService analysisService.IAnalysisService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	as analysisService.IAnalysisService,
) *AnalysisHandler {
	return &AnalysisHandler{
		log:             log,
		validator:       validate,
		middleware:      middleware,
		analysisService: as,
	}
}

func (h *AnalysisHandler) Start(srv fiber.Router) {
	srv.Post("/analyses", h.middleware.NewRateLimiter, h.CreateAnalysis)

	analyses := srv.Group("/analyses")
	analyses.Get("/:id", h.GetAnalysis)
	analyses.Get("/:id/results", h.GetResults)
	analyses.Get("/:id/failures", h.GetFailures)
	analyses.Get("/:id/stats", h.GetStats)
	analyses.Get("/:id/export", h.Export)

	srv.Get("/image-sets/:id/analyses", h.ListAnalyses)
}
