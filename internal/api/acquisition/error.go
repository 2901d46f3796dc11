package acquisition

import (
	"net/http"

	"BiasLens/pkg/response"
)

var (
	ErrImageSetNotFound    = response.NewError(http.StatusNotFound, "image set not found")
	ErrNoImagesFound       = response.NewError(http.StatusNotFound, "no images found for the selected attributes")
	ErrNoReplacementImage  = response.NewError(http.StatusNotFound, "no replacement images available")
	ErrImageNotInSet       = response.NewError(http.StatusNotFound, "image is not part of the image set")
	ErrInvalidImageData    = response.NewError(http.StatusBadRequest, "unsupported media type: only image/* is allowed")
	ErrDuplicateImageURL   = response.NewError(http.StatusBadRequest, "image set contains duplicate image urls")
	ErrNotDefaultSet       = response.NewError(http.StatusBadRequest, "only generated image sets can be refreshed")
	ErrNotCustomSet        = response.NewError(http.StatusBadRequest, "only uploaded images can be removed")
	ErrImageStoreFailure   = response.NewError(http.StatusBadGateway, "failed to reach the image store")
	ErrFaceCheckFailed     = response.NewError(http.StatusBadGateway, "failed to verify uploaded images")
	ErrFaceCheckIncomplete = response.NewError(http.StatusBadGateway, "face check did not return a result for every image")
	ErrSaveImageSet        = response.NewError(http.StatusInternalServerError, "failed to save image set")
)
