package acquisitionHandler

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"

	"BiasLens/internal/api/acquisition"
	contextPkg "BiasLens/pkg/context"
	"BiasLens/pkg/handlerUtil"
	"BiasLens/pkg/log"
)

func (h *AcquisitionHandler) RandomImages(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing random images request")

	var req acquisition.RandomImagesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleBadRequest(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	set, err := h.acquisitionService.RandomImages(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "random_images")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, acquisition.ImageSetResponse{ImageSet: set})
	}
}

func (h *AcquisitionHandler) UploadImages(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 2*time.Minute)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing upload images request")

	var req acquisition.UploadImagesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleBadRequest(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	set, err := h.acquisitionService.UploadImages(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "upload_images")
	}

	resp := acquisition.ImageSetResponse{ImageSet: set}
	if !set.Validated {
		resp.Message = "Some uploaded images do not contain a detectable face. Remove them before transforming."
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, resp)
	}
}

func (h *AcquisitionHandler) RefreshImage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req acquisition.RefreshImageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleBadRequest(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	set, err := h.acquisitionService.RefreshImage(c, ctx.Params("id"), req.Name)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "refresh_image")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, acquisition.ImageSetResponse{ImageSet: set})
	}
}

func (h *AcquisitionHandler) RemoveImage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	name, err := url.PathUnescape(ctx.Params("name"))
	if err != nil {
		return errHandler.HandleBadRequest(ctx, requestID, err, ctx.Path())
	}

	set, err := h.acquisitionService.RemoveImage(c, ctx.Params("id"), name)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "remove_image")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, acquisition.ImageSetResponse{ImageSet: set})
	}
}

func (h *AcquisitionHandler) GetImageSet(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	set, err := h.acquisitionService.GetImageSet(c, ctx.Params("id"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_image_set")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, acquisition.ImageSetResponse{ImageSet: set})
	}
}
